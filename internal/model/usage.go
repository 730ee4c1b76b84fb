package model

import "time"

// UsageRecord holds the usage counters for a single user on a single calendar day.
//
// swagger:model
type UsageRecord struct {
	// The usage record identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:gen_random_uuid()" json:"id,omitempty"`

	// The user identifier
	UserID string `gorm:"not null;index:usage_records_user_date,unique" json:"user_id"`

	// The UTC calendar day that the counters apply to
	Date time.Time `gorm:"type:date;not null;index:usage_records_user_date,unique" json:"date"`

	// The number of tone analyses performed on this day
	ToneAnalysesCount int `gorm:"not null;default:0" json:"tone_analyses_count"`

	// The number of scripts generated on this day
	ScriptGenerationsCount int `gorm:"not null;default:0" json:"script_generations_count"`

	// The number of voice syntheses performed on this day
	VoiceSynthesesCountToday int `gorm:"not null;default:0" json:"voice_syntheses_count_today"`

	// The number of voice syntheses performed in the calendar month up to and including this day
	VoiceSynthesesCountMonthly int `gorm:"not null;default:0" json:"voice_syntheses_count_monthly"`

	// The date and time the record was last modified
	//
	// readOnly: true
	UpdatedAt *time.Time `gorm:"->" json:"updated_at,omitempty"`
}

// DailyCount returns the daily counter for the given feature.
func (u *UsageRecord) DailyCount(feature FeatureKind) int {
	if u == nil {
		return 0
	}
	switch feature {
	case FeatureToneAnalysis:
		return u.ToneAnalysesCount
	case FeatureScriptGeneration:
		return u.ScriptGenerationsCount
	case FeatureVoiceSynthesis:
		return u.VoiceSynthesesCountToday
	default:
		return 0
	}
}

// UsageIncrement describes the amount to add to each counter of a usage record.
type UsageIncrement struct {
	ToneAnalyses      int
	ScriptGenerations int
	VoiceSyntheses    int
}

// IncrementFor returns the increment that records a single use of the given feature. Voice synthesis advances both
// the daily and the monthly counter; the monthly counter follows the daily one.
func IncrementFor(feature FeatureKind) UsageIncrement {
	switch feature {
	case FeatureToneAnalysis:
		return UsageIncrement{ToneAnalyses: 1}
	case FeatureScriptGeneration:
		return UsageIncrement{ScriptGenerations: 1}
	case FeatureVoiceSynthesis:
		return UsageIncrement{VoiceSyntheses: 1}
	default:
		return UsageIncrement{}
	}
}

// FeatureUsage summarizes the usage of a single feature for a user.
//
// swagger:model
type FeatureUsage struct {
	// The feature
	Feature FeatureKind `json:"feature"`

	// The number of uses in the current period
	Used int `json:"used"`

	// The maximum number of uses in the current period; absent if the feature is unlimited
	Limit *int `json:"limit,omitempty"`

	// The number of remaining uses in the current period; absent if the feature is unlimited
	Remaining *int `json:"remaining,omitempty"`

	// The period the limit applies to: day or month
	Period string `json:"period,omitempty"`

	// True if the feature is available for the user's tier
	Available bool `json:"available"`
}

// UsageSummary summarizes a user's usage for a single day.
//
// swagger:model
type UsageSummary struct {
	// The user identifier
	UserID string `json:"user_id"`

	// The user's tier
	Tier Tier `json:"tier"`

	// The day being summarized
	Date string `json:"date"`

	// True if the user is exempt from all usage limits
	Unlimited bool `json:"unlimited"`

	// The per-feature usage
	Features []FeatureUsage `json:"features"`
}
