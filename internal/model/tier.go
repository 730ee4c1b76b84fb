package model

import "fmt"

// Tier is the subscription level of a user.
//
// swagger:model
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// ParseTier converts a string to a tier, rejecting unknown values.
func ParseTier(value string) (Tier, error) {
	switch Tier(value) {
	case TierFree, TierPremium:
		return Tier(value), nil
	default:
		return "", fmt.Errorf("unknown tier: %s", value)
	}
}

// FeatureKind identifies a metered action.
//
// swagger:model
type FeatureKind string

const (
	FeatureToneAnalysis     FeatureKind = "tone_analysis"
	FeatureScriptGeneration FeatureKind = "script_generation"
	FeatureVoiceSynthesis   FeatureKind = "voice_synthesis"
)

// FeatureKinds lists every metered action.
var FeatureKinds = []FeatureKind{FeatureToneAnalysis, FeatureScriptGeneration, FeatureVoiceSynthesis}

// Valid returns true if the feature kind is one of the known features.
func (f FeatureKind) Valid() bool {
	switch f {
	case FeatureToneAnalysis, FeatureScriptGeneration, FeatureVoiceSynthesis:
		return true
	default:
		return false
	}
}

// EntitlementDecision is the outcome of an entitlement check. It's computed fresh for every request.
type EntitlementDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ModerationVerdict is the outcome of screening a piece of user-supplied text.
type ModerationVerdict struct {
	IsAppropriate bool   `json:"is_appropriate"`
	Category      string `json:"category,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
