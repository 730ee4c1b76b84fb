package db

import (
	"context"
	"time"

	"github.com/elucidare/tonewise/internal/model"
	"gorm.io/gorm"
)

// Store binds the database functions to a single GORM session so that they can be passed around as interfaces.
type Store struct {
	DB *gorm.DB
}

// NewStore creates a new store.
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) GetTier(ctx context.Context, userID string) (model.Tier, error) {
	return GetTier(ctx, s.DB, userID)
}

func (s *Store) SetTier(ctx context.Context, userID string, tier model.Tier) error {
	return SetTier(ctx, s.DB, userID, tier)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return GetProfile(ctx, s.DB, userID)
}

func (s *Store) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return SetStripeCustomerID(ctx, s.DB, userID, customerID)
}

func (s *Store) SetTierByStripeCustomer(ctx context.Context, customerID string, tier model.Tier) (string, error) {
	return SetTierByStripeCustomer(ctx, s.DB, customerID, tier)
}

func (s *Store) DailyCount(ctx context.Context, userID string, feature model.FeatureKind, day time.Time) (int, error) {
	record, err := GetUsageRecord(ctx, s.DB, userID, day)
	if err != nil {
		return 0, err
	}
	return record.DailyCount(feature), nil
}

func (s *Store) MonthlyCount(ctx context.Context, userID string, feature model.FeatureKind, day time.Time) (int, error) {
	return GetMonthlyCount(ctx, s.DB, userID, feature, day)
}

func (s *Store) UsageRecord(ctx context.Context, userID string, day time.Time) (*model.UsageRecord, error) {
	return GetUsageRecord(ctx, s.DB, userID, day)
}

func (s *Store) IncrementUsage(ctx context.Context, userID string, day time.Time, inc model.UsageIncrement) error {
	return IncrementUsage(ctx, s.DB, userID, day, inc)
}

func (s *Store) SaveToneAnalysis(ctx context.Context, analysis *model.ToneAnalysis) error {
	return SaveToneAnalysis(ctx, s.DB, analysis)
}

func (s *Store) SaveScriptGeneration(ctx context.Context, generation *model.ScriptGeneration) error {
	return SaveScriptGeneration(ctx, s.DB, generation)
}

func (s *Store) ListToneAnalyses(ctx context.Context, userID string, opts ListOptions) ([]model.ToneAnalysis, error) {
	return ListToneAnalyses(ctx, s.DB, userID, opts)
}

func (s *Store) ListScriptGenerations(ctx context.Context, userID string, opts ListOptions) ([]model.ScriptGeneration, error) {
	return ListScriptGenerations(ctx, s.DB, userID, opts)
}

func (s *Store) GetToneAnalysis(ctx context.Context, userID, id string) (*model.ToneAnalysis, error) {
	return GetToneAnalysis(ctx, s.DB, userID, id)
}

func (s *Store) GetScriptGeneration(ctx context.Context, userID, id string) (*model.ScriptGeneration, error) {
	return GetScriptGeneration(ctx, s.DB, userID, id)
}
