package billing

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	portal "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
)

// PaymentProvider is the subset of the Stripe API that the service uses.
type PaymentProvider interface {
	NewCustomer(ctx context.Context, userID, email string) (string, error)
	NewCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error)
	NewPortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// StripeProvider calls the Stripe API.
type StripeProvider struct{}

// NewStripeProvider configures the Stripe API key and returns a provider that uses it.
func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

// NewCustomer creates a Stripe customer tagged with the user's ID.
func (StripeProvider) NewCustomer(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// NewCheckoutSession starts a subscription checkout and returns its URL.
func (StripeProvider) NewCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// NewPortalSession creates a customer portal session and returns its URL.
func (StripeProvider) NewPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := portal.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}
