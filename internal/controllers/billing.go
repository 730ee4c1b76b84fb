package controllers

import (
	"io"
	"net/http"

	"github.com/elucidare/tonewise/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const maxWebhookBodyBytes = int64(65536)

// CreateCheckoutSession is the handler for the POST /v1/billing/checkout endpoint.
//
// swagger:route POST /v1/billing/checkout billing createCheckoutSession
//
// # Start a Premium Subscription
//
// Returns the URL of a hosted checkout page for the premium plan.
//
// responses:
//
//	200: urlResponse
//	401: unauthorizedResponse
//	500: internalServerErrorResponse
func (s Server) CreateCheckoutSession(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	url, err := s.Billing.CheckoutURL(ctx.Request().Context(), claims.Subject, claims.Email)
	if err != nil {
		log.WithFields(logrus.Fields{"context": "creating checkout session", "user": claims.Subject}).Error(err)
		return model.AppError(ctx, err)
	}

	return model.Success(ctx, model.URLResponse{URL: url}, http.StatusOK)
}

// CreatePortalSession is the handler for the POST /v1/billing/portal endpoint.
//
// swagger:route POST /v1/billing/portal billing createPortalSession
//
// # Manage a Subscription
//
// Returns the URL of the hosted billing portal, where the caller can update or cancel a subscription.
//
// responses:
//
//	200: urlResponse
//	400: badRequestResponse
//	401: unauthorizedResponse
//	500: internalServerErrorResponse
func (s Server) CreatePortalSession(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	url, err := s.Billing.PortalURL(ctx.Request().Context(), claims.Subject)
	if err != nil {
		log.WithFields(logrus.Fields{"context": "creating portal session", "user": claims.Subject}).Error(err)
		return model.AppError(ctx, err)
	}

	return model.Success(ctx, model.URLResponse{URL: url}, http.StatusOK)
}

// StripeWebhook is the handler for the POST /v1/billing/webhook endpoint. It isn't authenticated with a bearer token;
// the payload signature is verified instead.
//
// swagger:route POST /v1/billing/webhook billing stripeWebhook
//
// # Receive Payment Events
//
// Applies subscription changes reported by the payment provider.
//
// responses:
//
//	200: successMessageResponse
//	400: badRequestResponse
//	500: internalServerErrorResponse
func (s Server) StripeWebhook(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "receiving payment event"})

	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return model.AppError(ctx, badRequestBody(err))
	}

	err = s.Billing.HandleWebhook(ctx.Request().Context(), body, ctx.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error(err)
		return model.AppError(ctx, err)
	}

	return model.SuccessMessage(ctx, "received", http.StatusOK)
}
