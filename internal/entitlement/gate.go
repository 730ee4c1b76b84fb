// Package entitlement decides whether a user may perform a metered action. The gate only reads: usage is recorded
// separately, after the action has succeeded.
package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/metrics"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "entitlement"})

const (
	ReasonDailyLimit        = "Daily usage limit exceeded"
	ReasonMonthlyLimit      = "Monthly usage limit exceeded"
	ReasonPremiumRequired   = "Premium subscription required"
	ReasonAccountUnverified = "Failed to verify user account"
	ReasonUsageUnverified   = "Failed to verify usage"
)

var featureNames = map[model.FeatureKind]string{
	model.FeatureToneAnalysis:     "tone analyses",
	model.FeatureScriptGeneration: "script generations",
	model.FeatureVoiceSynthesis:   "voice practice sessions",
}

// TierReader looks up the subscription tier of a user.
type TierReader interface {
	GetTier(ctx context.Context, userID string) (model.Tier, error)
}

// UsageReader looks up usage counters.
type UsageReader interface {
	DailyCount(ctx context.Context, userID string, feature model.FeatureKind, day time.Time) (int, error)
	MonthlyCount(ctx context.Context, userID string, feature model.FeatureKind, day time.Time) (int, error)
}

// Decision is the outcome of an entitlement check along with the details needed to report a denial.
type Decision struct {
	model.EntitlementDecision

	// The error kind to report if access was denied.
	Kind apperr.Kind

	// The user-facing explanation of a denial.
	UserMessage string

	// The usage observed when the decision was made and the ceiling it was compared to.
	Used    int
	Ceiling int
	Period  Period
}

// Err converts a denial to an error. Nil is returned if access was allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.New(d.Kind, d.Reason, d.UserMessage)
}

func allow() Decision {
	return Decision{EntitlementDecision: model.EntitlementDecision{Allowed: true}}
}

func deny(kind apperr.Kind, reason, userMessage string) Decision {
	return Decision{
		EntitlementDecision: model.EntitlementDecision{Allowed: false, Reason: reason},
		Kind:                kind,
		UserMessage:         userMessage,
	}
}

// Gate applies an entitlement policy.
type Gate struct {
	Policy     Policy
	Tiers      TierReader
	Usage      UsageReader
	DemoUserID string
	Now        func() time.Time
}

// NewGate creates a gate that applies the default policy.
func NewGate(tiers TierReader, usage UsageReader, demoUserID string) *Gate {
	return &Gate{
		Policy:     DefaultPolicy,
		Tiers:      tiers,
		Usage:      usage,
		DemoUserID: demoUserID,
		Now:        time.Now,
	}
}

// IsDemoUser returns true if the user is the designated demo identity. The match is exact.
func (g *Gate) IsDemoUser(userID string) bool {
	return g.DemoUserID != "" && userID == g.DemoUserID
}

// Authorize looks up the user's tier and checks whether the user may perform the action. The check fails closed if
// the tier can't be read.
func (g *Gate) Authorize(ctx context.Context, userID string, feature model.FeatureKind) Decision {
	log := log.WithFields(logging.UserFields(userID, string(feature)))

	if g.IsDemoUser(userID) {
		return g.record(feature, allow())
	}

	tier, err := g.Tiers.GetTier(ctx, userID)
	if err != nil {
		log.Errorf("unable to look up the user tier: %s", err)
		return g.record(feature, deny(
			apperr.KindServer,
			ReasonAccountUnverified,
			"We could not check your account details, so the request was not run. Please try again in a few minutes.",
		))
	}

	return g.Check(ctx, userID, feature, tier)
}

// Check decides whether a user with the given tier may perform an action.
func (g *Gate) Check(ctx context.Context, userID string, feature model.FeatureKind, tier model.Tier) Decision {
	log := log.WithFields(logging.UserFields(userID, string(feature)))

	if g.IsDemoUser(userID) {
		return g.record(feature, allow())
	}

	rule := g.Policy.Rule(tier, feature)
	if !rule.Available {
		return g.record(feature, deny(
			apperr.KindPermission,
			ReasonPremiumRequired,
			fmt.Sprintf("Your account is on the %s plan. This feature is only available on the premium plan.", tier),
		))
	}
	if rule.Unlimited() {
		return g.record(feature, allow())
	}

	now := g.now()
	var (
		used int
		err  error
	)
	switch rule.Period {
	case PeriodMonth:
		used, err = g.Usage.MonthlyCount(ctx, userID, feature, now)
	default:
		used, err = g.Usage.DailyCount(ctx, userID, feature, now)
	}
	if err != nil {
		log.Errorf("unable to look up the usage counter: %s", err)
		return g.record(feature, deny(
			apperr.KindServer,
			ReasonUsageUnverified,
			"We could not check how much you have used this feature, so the request was not run. Please try again in a few minutes.",
		))
	}

	if used < rule.Ceiling {
		decision := allow()
		decision.Used, decision.Ceiling, decision.Period = used, rule.Ceiling, rule.Period
		return g.record(feature, decision)
	}

	var decision Decision
	if rule.Period == PeriodMonth {
		decision = deny(
			apperr.KindRateLimit,
			ReasonMonthlyLimit,
			fmt.Sprintf(
				"You have used all %d %s for this month. You can use this feature again on the first day of next month.",
				rule.Ceiling, featureNames[feature],
			),
		)
	} else {
		decision = deny(
			apperr.KindRateLimit,
			ReasonDailyLimit,
			fmt.Sprintf(
				"You have used all %d %s for today. You can use this feature again tomorrow. The day resets at midnight UTC.",
				rule.Ceiling, featureNames[feature],
			),
		)
	}
	decision.Used, decision.Ceiling, decision.Period = used, rule.Ceiling, rule.Period

	log.Infof("denied: %s (%d of %d)", decision.Reason, used, rule.Ceiling)
	return g.record(feature, decision)
}

func (g *Gate) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Gate) record(feature model.FeatureKind, decision Decision) Decision {
	outcome := "allowed"
	if !decision.Allowed {
		outcome = string(decision.Kind)
	}
	metrics.EntitlementDecisions.WithLabelValues(string(feature), outcome).Inc()
	return decision
}
