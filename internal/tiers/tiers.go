// Package tiers changes subscription tiers and announces the changes.
package tiers

import (
	"context"
	"time"

	"github.com/elucidare/tonewise/internal/events"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "tiers"})

// Sources of tier changes.
const (
	SourceAdmin   = "admin"
	SourceBilling = "billing"
	SourceNATS    = "nats"
)

// Store persists subscription tiers.
type Store interface {
	SetTier(ctx context.Context, userID string, tier model.Tier) error
	SetTierByStripeCustomer(ctx context.Context, customerID string, tier model.Tier) (string, error)
}

// Manager changes subscription tiers.
type Manager struct {
	Store     Store
	Publisher events.Publisher
	Now       func() time.Time
}

// NewManager creates a new tier manager. Tier changes aren't announced if the publisher is nil.
func NewManager(store Store, publisher events.Publisher) *Manager {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Manager{Store: store, Publisher: publisher, Now: time.Now}
}

func (m *Manager) announce(ctx context.Context, userID string, tier model.Tier, source string) {
	event := &events.TierEvent{UserID: userID, Tier: tier, Source: source, ChangedAt: m.Now().UTC()}
	if err := m.Publisher.PublishTierChange(ctx, event); err != nil {
		log.WithFields(logrus.Fields{"user": userID}).Warnf("unable to publish the tier change: %s", err)
	}
}

// Set sets the tier of a user.
func (m *Manager) Set(ctx context.Context, userID string, tier model.Tier, source string) error {
	wrapMsg := "unable to set the subscription tier"

	if userID == "" {
		return errors.New("a user ID is required")
	}
	if err := m.Store.SetTier(ctx, userID, tier); err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	log.WithFields(logrus.Fields{"user": userID, "tier": tier, "source": source}).Info("subscription tier changed")
	m.announce(ctx, userID, tier, source)

	return nil
}

// SetByStripeCustomer sets the tier of the user linked to a Stripe customer and returns the user's ID.
func (m *Manager) SetByStripeCustomer(ctx context.Context, customerID string, tier model.Tier, source string) (string, error) {
	wrapMsg := "unable to set the subscription tier for the Stripe customer"

	if customerID == "" {
		return "", errors.New("a Stripe customer ID is required")
	}
	userID, err := m.Store.SetTierByStripeCustomer(ctx, customerID, tier)
	if err != nil {
		return "", errors.Wrap(err, wrapMsg)
	}

	log.WithFields(logrus.Fields{"user": userID, "tier": tier, "source": source}).Info("subscription tier changed")
	m.announce(ctx, userID, tier, source)

	return userID, nil
}
