package entitlement

import "github.com/elucidare/tonewise/internal/model"

// Period is the window that a usage ceiling applies to.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Rule describes how a single tier may use a single feature. A zero Ceiling means unlimited.
type Rule struct {
	Available bool
	Ceiling   int
	Period    Period
}

// Unlimited returns true if the rule doesn't cap usage.
func (r Rule) Unlimited() bool {
	return r.Available && r.Ceiling == 0
}

// Policy maps each tier and feature to its rule. Missing entries deny access.
type Policy map[model.Tier]map[model.FeatureKind]Rule

// DefaultPolicy is the policy used by the service.
var DefaultPolicy = Policy{
	model.TierFree: {
		model.FeatureToneAnalysis:     {Available: true, Ceiling: 5, Period: PeriodDay},
		model.FeatureScriptGeneration: {Available: true, Ceiling: 3, Period: PeriodDay},
		model.FeatureVoiceSynthesis:   {Available: false},
	},
	model.TierPremium: {
		model.FeatureToneAnalysis:     {Available: true},
		model.FeatureScriptGeneration: {Available: true},
		model.FeatureVoiceSynthesis:   {Available: true, Ceiling: 10, Period: PeriodMonth},
	},
}

// Rule returns the rule for a tier and feature.
func (p Policy) Rule(tier model.Tier, feature model.FeatureKind) Rule {
	rules, ok := p[tier]
	if !ok {
		return Rule{}
	}
	return rules[feature]
}
