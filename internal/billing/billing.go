// Package billing upgrades and downgrades subscriptions through Stripe.
package billing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/tiers"
	"github.com/elucidare/tonewise/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "billing"})

// Webhook event types that change a subscription tier.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

const unavailableMessage = "Billing is not available right now. Please try again later."

// ProfileStore looks up and records the Stripe customer of a user.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

// TierSetter changes the tier of the user linked to a Stripe customer.
type TierSetter interface {
	SetByStripeCustomer(ctx context.Context, customerID string, tier model.Tier, source string) (string, error)
}

// Settings holds the Stripe settings.
type Settings struct {
	PriceID       string
	WebhookSecret string
	FrontendURL   string
}

// Service manages subscriptions.
type Service struct {
	Provider PaymentProvider
	Profiles ProfileStore
	Tiers    TierSetter
	Settings Settings
}

// New creates a billing service.
func New(provider PaymentProvider, profiles ProfileStore, tierSetter TierSetter, settings Settings) *Service {
	settings.FrontendURL = strings.TrimRight(settings.FrontendURL, "/")
	return &Service{Provider: provider, Profiles: profiles, Tiers: tierSetter, Settings: settings}
}

func notConfigured(what string) error {
	return apperr.New(apperr.KindServer, "billing is not configured: missing "+what, unavailableMessage)
}

// EnsureCustomer returns the Stripe customer linked to a user, creating it if necessary.
func (s *Service) EnsureCustomer(ctx context.Context, userID, email string) (string, error) {
	log := log.WithFields(logrus.Fields{"user": userID})

	profile, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindServer, "unable to look up the profile", unavailableMessage)
	}
	if profile != nil && profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return *profile.StripeCustomerID, nil
	}

	customerID, err := s.Provider.NewCustomer(ctx, userID, email)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindServer, "unable to create the Stripe customer", unavailableMessage)
	}
	if err = s.Profiles.SetStripeCustomerID(ctx, userID, customerID); err != nil {
		return "", apperr.Wrap(err, apperr.KindServer, "unable to record the Stripe customer", unavailableMessage)
	}

	log.Infof("created Stripe customer %s", customerID)
	return customerID, nil
}

// CheckoutURL starts a premium subscription checkout for a user.
func (s *Service) CheckoutURL(ctx context.Context, userID, email string) (string, error) {
	if s.Settings.PriceID == "" {
		return "", notConfigured("price ID")
	}
	if s.Settings.FrontendURL == "" {
		return "", notConfigured("frontend URL")
	}

	customerID, err := s.EnsureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	url, err := s.Provider.NewCheckoutSession(
		ctx,
		customerID,
		s.Settings.PriceID,
		s.Settings.FrontendURL+"/billing/success",
		s.Settings.FrontendURL+"/billing/cancel",
	)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindServer, "unable to create the checkout session", unavailableMessage)
	}

	return url, nil
}

// PortalURL creates a customer portal session for a user who already has a Stripe customer.
func (s *Service) PortalURL(ctx context.Context, userID string) (string, error) {
	if s.Settings.FrontendURL == "" {
		return "", notConfigured("frontend URL")
	}

	profile, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindServer, "unable to look up the profile", unavailableMessage)
	}
	if profile == nil || profile.StripeCustomerID == nil || *profile.StripeCustomerID == "" {
		return "", apperr.Validation("no Stripe customer for the user", "You don't have a subscription to manage yet.")
	}

	url, err := s.Provider.NewPortalSession(ctx, *profile.StripeCustomerID, s.Settings.FrontendURL+"/settings/billing")
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindServer, "unable to create the portal session", unavailableMessage)
	}

	return url, nil
}

// HandleWebhook verifies and applies a Stripe webhook event. Unhandled event types are ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.Settings.WebhookSecret == "" {
		return notConfigured("webhook secret")
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.Settings.WebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return apperr.Wrap(err, apperr.KindValidation, "signature verification failed", "")
	}

	log := log.WithFields(logrus.Fields{"event": event.ID, "type": event.Type})

	var (
		customerID string
		tier       model.Tier
	)
	switch event.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperr.Wrap(err, apperr.KindValidation, "invalid session payload", "")
		}
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		tier = model.TierPremium
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err = json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperr.Wrap(err, apperr.KindValidation, "invalid subscription payload", "")
		}
		if sub.Customer != nil {
			customerID = sub.Customer.ID
		}
		tier = model.TierFree
	default:
		log.Debug("ignoring event")
		return nil
	}

	if customerID == "" {
		return apperr.Validation("missing customer id", "")
	}

	userID, err := s.Tiers.SetByStripeCustomer(ctx, customerID, tier, tiers.SourceBilling)
	if errors.Is(err, db.ErrProfileNotFound) {
		log.Warnf("no profile for Stripe customer %s", customerID)
		return nil
	}
	if err != nil {
		return apperr.Server(err, "unable to update the subscription tier")
	}

	log.Infof("user %s moved to the %s tier", userID, tier)
	return nil
}
