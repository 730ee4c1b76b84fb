package entitlement

import (
	"context"
	"time"

	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/utils"
	"github.com/pkg/errors"
)

// Summarize reports a user's usage of every feature on the given day along with the limits of the user's tier. The
// monthly counts cover the calendar month that contains the day.
func (g *Gate) Summarize(ctx context.Context, userID string, day time.Time) (*model.UsageSummary, error) {
	wrapMsg := "unable to summarize usage"

	day = utils.StartOfDay(day)

	tier, err := g.Tiers.GetTier(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	summary := &model.UsageSummary{
		UserID:    userID,
		Tier:      tier,
		Date:      day.Format(time.DateOnly),
		Unlimited: g.IsDemoUser(userID),
		Features:  make([]model.FeatureUsage, 0, len(model.FeatureKinds)),
	}

	for _, feature := range model.FeatureKinds {
		rule := g.Policy.Rule(tier, feature)
		usage := model.FeatureUsage{Feature: feature, Available: rule.Available || summary.Unlimited}

		period := rule.Period
		if period == "" {
			period = PeriodDay
		}
		if period == PeriodMonth {
			usage.Used, err = g.Usage.MonthlyCount(ctx, userID, feature, day)
		} else {
			usage.Used, err = g.Usage.DailyCount(ctx, userID, feature, day)
		}
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}

		if rule.Available && !rule.Unlimited() && !summary.Unlimited {
			limit := rule.Ceiling
			remaining := limit - usage.Used
			if remaining < 0 {
				remaining = 0
			}
			usage.Limit, usage.Remaining = &limit, &remaining
			usage.Period = string(period)
		}

		summary.Features = append(summary.Features, usage)
	}

	return summary, nil
}
