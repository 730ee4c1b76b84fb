package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTiers struct {
	mock.Mock
}

func (m *mockTiers) GetTier(ctx context.Context, userID string) (model.Tier, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Tier), args.Error(1)
}

type mockUsage struct {
	mock.Mock
}

func (m *mockUsage) DailyCount(ctx context.Context, userID string, feature model.FeatureKind, day time.Time) (int, error) {
	args := m.Called(ctx, userID, feature, day)
	return args.Int(0), args.Error(1)
}

func (m *mockUsage) MonthlyCount(ctx context.Context, userID string, feature model.FeatureKind, day time.Time) (int, error) {
	args := m.Called(ctx, userID, feature, day)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

func newTestGate(tiers *mockTiers, usage *mockUsage) *Gate {
	gate := NewGate(tiers, usage, "demo-user")
	gate.Now = func() time.Time { return fixedNow }
	return gate
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		tier     model.Tier
		feature  model.FeatureKind
		daily    int
		monthly  int
		allowed  bool
		reason   string
		kind     apperr.Kind
		useDaily bool
		useMonth bool
	}{
		{name: "free tone under ceiling", tier: model.TierFree, feature: model.FeatureToneAnalysis, daily: 4, allowed: true, useDaily: true},
		{name: "free tone at ceiling", tier: model.TierFree, feature: model.FeatureToneAnalysis, daily: 5, reason: ReasonDailyLimit, kind: apperr.KindRateLimit, useDaily: true},
		{name: "free script under ceiling", tier: model.TierFree, feature: model.FeatureScriptGeneration, daily: 2, allowed: true, useDaily: true},
		{name: "free script at ceiling", tier: model.TierFree, feature: model.FeatureScriptGeneration, daily: 3, reason: ReasonDailyLimit, kind: apperr.KindRateLimit, useDaily: true},
		{name: "free voice", tier: model.TierFree, feature: model.FeatureVoiceSynthesis, reason: ReasonPremiumRequired, kind: apperr.KindPermission},
		{name: "premium tone", tier: model.TierPremium, feature: model.FeatureToneAnalysis, allowed: true},
		{name: "premium script", tier: model.TierPremium, feature: model.FeatureScriptGeneration, allowed: true},
		{name: "premium voice under ceiling", tier: model.TierPremium, feature: model.FeatureVoiceSynthesis, monthly: 9, allowed: true, useMonth: true},
		{name: "premium voice at ceiling", tier: model.TierPremium, feature: model.FeatureVoiceSynthesis, monthly: 10, reason: ReasonMonthlyLimit, kind: apperr.KindRateLimit, useMonth: true},
		{name: "unknown tier", tier: model.Tier("gold"), feature: model.FeatureToneAnalysis, reason: ReasonPremiumRequired, kind: apperr.KindPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiers := &mockTiers{}
			usage := &mockUsage{}
			if tt.useDaily {
				usage.On("DailyCount", mock.Anything, "user-1", tt.feature, fixedNow).Return(tt.daily, nil)
			}
			if tt.useMonth {
				usage.On("MonthlyCount", mock.Anything, "user-1", tt.feature, fixedNow).Return(tt.monthly, nil)
			}

			decision := newTestGate(tiers, usage).Check(context.Background(), "user-1", tt.feature, tt.tier)

			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
			if !tt.allowed {
				assert.Equal(t, tt.kind, decision.Kind)
				assert.NotEmpty(t, decision.UserMessage)
				assert.NotEqual(t, decision.Reason, decision.UserMessage)
				assert.Equal(t, tt.kind, apperr.KindOf(decision.Err()))
			} else {
				assert.NoError(t, decision.Err())
			}
			usage.AssertExpectations(t)
			if !tt.useDaily {
				usage.AssertNotCalled(t, "DailyCount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			if !tt.useMonth {
				usage.AssertNotCalled(t, "MonthlyCount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDemoUserBypassesEverything(t *testing.T) {
	tiers := &mockTiers{}
	usage := &mockUsage{}
	gate := newTestGate(tiers, usage)

	for _, feature := range model.FeatureKinds {
		decision := gate.Authorize(context.Background(), "demo-user", feature)
		assert.True(t, decision.Allowed, "feature %s", feature)

		decision = gate.Check(context.Background(), "demo-user", feature, model.TierFree)
		assert.True(t, decision.Allowed, "feature %s", feature)
	}

	tiers.AssertNotCalled(t, "GetTier", mock.Anything, mock.Anything)
	usage.AssertNotCalled(t, "DailyCount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	usage.AssertNotCalled(t, "MonthlyCount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDemoMatchIsExact(t *testing.T) {
	tiers := &mockTiers{}
	usage := &mockUsage{}
	gate := newTestGate(tiers, usage)

	assert.True(t, gate.IsDemoUser("demo-user"))
	assert.False(t, gate.IsDemoUser("Demo-User"))
	assert.False(t, gate.IsDemoUser("demo-user "))
	assert.False(t, gate.IsDemoUser("demo"))

	// No demo identity is configured, so nobody matches.
	gate.DemoUserID = ""
	assert.False(t, gate.IsDemoUser(""))
}

func TestAuthorizeFailsClosedWhenTierIsUnreadable(t *testing.T) {
	tiers := &mockTiers{}
	usage := &mockUsage{}
	tiers.On("GetTier", mock.Anything, "user-1").Return(model.Tier(""), errors.New("database unavailable"))

	decision := newTestGate(tiers, usage).Authorize(context.Background(), "user-1", model.FeatureToneAnalysis)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonAccountUnverified, decision.Reason)
	assert.Equal(t, apperr.KindServer, decision.Kind)
	usage.AssertNotCalled(t, "DailyCount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckFailsClosedWhenUsageIsUnreadable(t *testing.T) {
	tiers := &mockTiers{}
	usage := &mockUsage{}
	usage.On("DailyCount", mock.Anything, "user-1", model.FeatureToneAnalysis, fixedNow).Return(0, errors.New("timeout"))

	decision := newTestGate(tiers, usage).Check(context.Background(), "user-1", model.FeatureToneAnalysis, model.TierFree)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonUsageUnverified, decision.Reason)
}

func TestAuthorizeUsesStoredTier(t *testing.T) {
	tiers := &mockTiers{}
	usage := &mockUsage{}
	tiers.On("GetTier", mock.Anything, "user-1").Return(model.TierPremium, nil)

	gate := newTestGate(tiers, usage)
	for i := 0; i < 100; i++ {
		decision := gate.Authorize(context.Background(), "user-1", model.FeatureScriptGeneration)
		require.True(t, decision.Allowed)
	}
}

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, 5, DefaultPolicy.Rule(model.TierFree, model.FeatureToneAnalysis).Ceiling)
	assert.Equal(t, 3, DefaultPolicy.Rule(model.TierFree, model.FeatureScriptGeneration).Ceiling)
	assert.False(t, DefaultPolicy.Rule(model.TierFree, model.FeatureVoiceSynthesis).Available)
	assert.True(t, DefaultPolicy.Rule(model.TierPremium, model.FeatureToneAnalysis).Unlimited())
	assert.Equal(t, PeriodMonth, DefaultPolicy.Rule(model.TierPremium, model.FeatureVoiceSynthesis).Period)
	assert.Equal(t, 10, DefaultPolicy.Rule(model.TierPremium, model.FeatureVoiceSynthesis).Ceiling)
}
