package model

import "time"

// Profile holds the subscription details of a user. The user ID is the subject of the bearer credential.
//
// swagger:model
type Profile struct {
	// The user identifier
	UserID string `gorm:"primaryKey" json:"user_id"`

	// The user's subscription tier
	Tier Tier `gorm:"not null;default:free" json:"tier"`

	// The customer identifier assigned by the payment provider
	StripeCustomerID *string `gorm:"uniqueIndex" json:"-"`

	// The date and time the profile was created
	//
	// readOnly: true
	CreatedAt time.Time `json:"created_at"`

	// The date and time the profile was last modified
	//
	// readOnly: true
	UpdatedAt time.Time `json:"updated_at"`
}
