package db

import (
	"context"
	"fmt"
	"time"

	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// incrementUsageSQL adds to the counters of a usage record in a single statement, creating the record if it doesn't
// exist yet. A new record seeds its monthly voice counter from the earlier days of the same month so that the column
// always holds the month-to-date total.
const incrementUsageSQL = `
INSERT INTO usage_records AS u (
	user_id, date,
	tone_analyses_count, script_generations_count,
	voice_syntheses_count_today, voice_syntheses_count_monthly
)
SELECT ?, ?, ?, ?, ?, ? + COALESCE(SUM(r.voice_syntheses_count_today), 0)
FROM usage_records r
WHERE r.user_id = ? AND r.date >= ? AND r.date < ?
ON CONFLICT (user_id, date) DO UPDATE SET
	tone_analyses_count = u.tone_analyses_count + EXCLUDED.tone_analyses_count,
	script_generations_count = u.script_generations_count + EXCLUDED.script_generations_count,
	voice_syntheses_count_today = u.voice_syntheses_count_today + EXCLUDED.voice_syntheses_count_today,
	voice_syntheses_count_monthly = u.voice_syntheses_count_monthly + EXCLUDED.voice_syntheses_count_today,
	updated_at = now()
`

// dailyCounterColumns maps each feature to the column that holds its daily counter.
var dailyCounterColumns = map[model.FeatureKind]string{
	model.FeatureToneAnalysis:     "tone_analyses_count",
	model.FeatureScriptGeneration: "script_generations_count",
	model.FeatureVoiceSynthesis:   "voice_syntheses_count_today",
}

// IncrementUsage atomically adds an increment to the usage record for a user on the given day.
func IncrementUsage(ctx context.Context, db *gorm.DB, userID string, day time.Time, inc model.UsageIncrement) error {
	wrapMsg := "unable to increment the usage counters"

	day = utils.StartOfDay(day)
	monthStart := utils.StartOfMonth(day)

	err := db.WithContext(ctx).Exec(
		incrementUsageSQL,
		userID, day,
		inc.ToneAnalyses, inc.ScriptGenerations,
		inc.VoiceSyntheses, inc.VoiceSyntheses,
		userID, monthStart, day,
	).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// GetUsageRecord returns the usage record for a user on the given day. Nil is returned if there's no record.
func GetUsageRecord(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*model.UsageRecord, error) {
	wrapMsg := "unable to look up the usage record"

	var records []model.UsageRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, utils.StartOfDay(day)).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &records[0], nil
}

// GetMonthlyCount returns the number of times a user has used a feature in the calendar month containing the given
// day. The total is summed from the daily counters so that it resets at the month boundary.
func GetMonthlyCount(ctx context.Context, db *gorm.DB, userID string, feature model.FeatureKind, day time.Time) (int, error) {
	wrapMsg := "unable to count the monthly usage"

	column, ok := dailyCounterColumns[feature]
	if !ok {
		return 0, fmt.Errorf("unknown feature: %s", feature)
	}

	query := fmt.Sprintf(
		"SELECT COALESCE(SUM(%s), 0) FROM usage_records WHERE user_id = ? AND date >= ? AND date < ?",
		column,
	)

	var count int
	err := db.WithContext(ctx).
		Raw(query, userID, utils.StartOfMonth(day), utils.StartOfNextMonth(day)).
		Scan(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return count, nil
}

// ListUsageRecords lists the usage records for a user within a date range, in ascending order by date.
func ListUsageRecords(ctx context.Context, db *gorm.DB, userID string, from, to time.Time) ([]model.UsageRecord, error) {
	wrapMsg := "unable to list the usage records"

	records := make([]model.UsageRecord, 0)
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, utils.StartOfDay(from), utils.StartOfDay(to)).
		Order("date asc").
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return records, nil
}
