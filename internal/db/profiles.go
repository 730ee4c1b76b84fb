package db

import (
	"context"
	"time"

	"github.com/elucidare/tonewise/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProfileNotFound is returned when a profile lookup by payment provider customer fails.
var ErrProfileNotFound = errors.New("profile not found")

// GetProfile looks up the profile for a user. Nil is returned if the user doesn't have a profile yet.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*model.Profile, error) {
	wrapMsg := "unable to look up the user profile"

	var profiles []model.Profile
	err := db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&profiles).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	return &profiles[0], nil
}

// GetTier returns the tier of a user. Users without a profile are on the free tier.
func GetTier(ctx context.Context, db *gorm.DB, userID string) (model.Tier, error) {
	profile, err := GetProfile(ctx, db, userID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return model.TierFree, nil
	}

	return profile.Tier, nil
}

// SetTier sets the tier of a user, creating the profile if necessary.
func SetTier(ctx context.Context, db *gorm.DB, userID string, tier model.Tier) error {
	wrapMsg := "unable to set the user tier"

	profile := model.Profile{UserID: userID, Tier: tier, UpdatedAt: time.Now()}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
		}).
		Create(&profile).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// SetStripeCustomerID records the payment provider's customer identifier for a user, creating the profile if
// necessary.
func SetStripeCustomerID(ctx context.Context, db *gorm.DB, userID, customerID string) error {
	wrapMsg := "unable to record the customer identifier"

	profile := model.Profile{UserID: userID, Tier: model.TierFree, StripeCustomerID: &customerID, UpdatedAt: time.Now()}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "updated_at"}),
		}).
		Create(&profile).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// SetTierByStripeCustomer sets the tier of the user associated with a payment provider customer identifier.
func SetTierByStripeCustomer(ctx context.Context, db *gorm.DB, customerID string, tier model.Tier) (string, error) {
	wrapMsg := "unable to set the tier for the customer"

	var profiles []model.Profile
	err := db.WithContext(ctx).
		Model(&profiles).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "user_id"}}}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]interface{}{"tier": tier, "updated_at": time.Now()}).Error
	if err != nil {
		return "", errors.Wrap(err, wrapMsg)
	}
	if len(profiles) == 0 {
		return "", ErrProfileNotFound
	}

	return profiles[0].UserID, nil
}
