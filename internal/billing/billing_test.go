package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/tiers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testWebhookSecret = "whsec_test"

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) NewCustomer(ctx context.Context, userID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) NewCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	args := m.Called(customerID, priceID, successURL, cancelURL)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) NewPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(customerID, returnURL)
	return args.String(0), args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(userID)
	profile, _ := args.Get(0).(*model.Profile)
	return profile, args.Error(1)
}

func (m *mockProfiles) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return m.Called(userID, customerID).Error(0)
}

type mockTiers struct {
	mock.Mock
}

func (m *mockTiers) SetByStripeCustomer(ctx context.Context, customerID string, tier model.Tier, source string) (string, error) {
	args := m.Called(customerID, tier, source)
	return args.String(0), args.Error(1)
}

func newTestService() (*Service, *mockProvider, *mockProfiles, *mockTiers) {
	provider := &mockProvider{}
	profiles := &mockProfiles{}
	tierSetter := &mockTiers{}
	svc := New(provider, profiles, tierSetter, Settings{
		PriceID:       "price_premium",
		WebhookSecret: testWebhookSecret,
		FrontendURL:   "https://app.example.com/",
	})
	return svc, provider, profiles, tierSetter
}

func TestCheckoutURLCreatesCustomer(t *testing.T) {
	svc, provider, profiles, _ := newTestService()
	profiles.On("GetProfile", "alice").Return(nil, nil)
	provider.On("NewCustomer", "alice", "alice@example.com").Return("cus_123", nil)
	profiles.On("SetStripeCustomerID", "alice", "cus_123").Return(nil)
	provider.On("NewCheckoutSession", "cus_123", "price_premium",
		"https://app.example.com/billing/success", "https://app.example.com/billing/cancel").
		Return("https://checkout.stripe.com/c/pay/cs_test", nil)

	url, err := svc.CheckoutURL(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test", url)
	provider.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestCheckoutURLReusesCustomer(t *testing.T) {
	svc, provider, profiles, _ := newTestService()
	customerID := "cus_existing"
	profiles.On("GetProfile", "alice").Return(&model.Profile{UserID: "alice", StripeCustomerID: &customerID}, nil)
	provider.On("NewCheckoutSession", "cus_existing", "price_premium", mock.Anything, mock.Anything).
		Return("https://checkout.stripe.com/c/pay/cs_test", nil)

	_, err := svc.CheckoutURL(context.Background(), "alice", "")
	require.NoError(t, err)
	provider.AssertNotCalled(t, "NewCustomer", mock.Anything, mock.Anything)
}

func TestCheckoutURLRequiresConfiguration(t *testing.T) {
	svc := New(&mockProvider{}, &mockProfiles{}, &mockTiers{}, Settings{})
	_, err := svc.CheckoutURL(context.Background(), "alice", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindServer, apperr.KindOf(err))
}

func TestPortalURL(t *testing.T) {
	svc, provider, profiles, _ := newTestService()
	customerID := "cus_123"
	profiles.On("GetProfile", "alice").Return(&model.Profile{UserID: "alice", StripeCustomerID: &customerID}, nil)
	profiles.On("GetProfile", "bob").Return(nil, nil)
	provider.On("NewPortalSession", "cus_123", "https://app.example.com/settings/billing").
		Return("https://billing.stripe.com/p/session/test", nil)

	url, err := svc.PortalURL(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.com/p/session/test", url)

	_, err = svc.PortalURL(context.Background(), "bob")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func signedPayload(t *testing.T, payload string, secret string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func eventPayload(eventType, object string) string {
	return fmt.Sprintf(`{"id": "evt_test", "object": "event", "type": %q, "data": {"object": %s}}`, eventType, object)
}

func TestHandleWebhookUpgradesOnCheckout(t *testing.T) {
	svc, _, _, tierSetter := newTestService()
	tierSetter.On("SetByStripeCustomer", "cus_123", model.TierPremium, tiers.SourceBilling).Return("alice", nil)

	header, payload := signedPayload(t, eventPayload(EventCheckoutCompleted,
		`{"id": "cs_test", "object": "checkout.session", "customer": "cus_123"}`), testWebhookSecret)

	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
	tierSetter.AssertExpectations(t)
}

func TestHandleWebhookDowngradesOnCancellation(t *testing.T) {
	svc, _, _, tierSetter := newTestService()
	tierSetter.On("SetByStripeCustomer", "cus_123", model.TierFree, tiers.SourceBilling).Return("alice", nil)

	header, payload := signedPayload(t, eventPayload(EventSubscriptionDeleted,
		`{"id": "sub_test", "object": "subscription", "customer": "cus_123"}`), testWebhookSecret)

	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
	tierSetter.AssertExpectations(t)
}

func TestHandleWebhookIgnoresUnknownCustomersAndEvents(t *testing.T) {
	svc, _, _, tierSetter := newTestService()
	tierSetter.On("SetByStripeCustomer", "cus_unknown", model.TierPremium, tiers.SourceBilling).
		Return("", errors.Wrap(db.ErrProfileNotFound, "unable to set the subscription tier"))

	header, payload := signedPayload(t, eventPayload(EventCheckoutCompleted,
		`{"id": "cs_test", "object": "checkout.session", "customer": "cus_unknown"}`), testWebhookSecret)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))

	header, payload = signedPayload(t, eventPayload("invoice.paid", `{"id": "in_test", "object": "invoice"}`), testWebhookSecret)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
}

func TestHandleWebhookRejectsBadSignatures(t *testing.T) {
	svc, _, _, tierSetter := newTestService()

	header, payload := signedPayload(t, eventPayload(EventCheckoutCompleted,
		`{"id": "cs_test", "object": "checkout.session", "customer": "cus_123"}`), "whsec_other")

	err := svc.HandleWebhook(context.Background(), payload, header)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	tierSetter.AssertNotCalled(t, "SetByStripeCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhookRequiresCustomer(t *testing.T) {
	svc, _, _, _ := newTestService()

	header, payload := signedPayload(t, eventPayload(EventCheckoutCompleted,
		`{"id": "cs_test", "object": "checkout.session"}`), testWebhookSecret)

	err := svc.HandleWebhook(context.Background(), payload, header)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
