// Package controllers contains the HTTP and NATS handlers of the service.
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/auth"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "controllers"})

// Actions runs the metered actions.
type Actions interface {
	AnalyzeTone(ctx context.Context, userID string, req httpmodel.ToneAnalysisRequest) (*model.ToneAnalysisResponse, error)
	GenerateScripts(ctx context.Context, userID string, req httpmodel.ScriptGenerationRequest) (*model.ScriptGenerationResponse, error)
	SynthesizeVoice(ctx context.Context, userID string, req httpmodel.VoiceSynthesisRequest) (*model.VoiceResult, error)
}

// UsageSummarizer reports a user's usage.
type UsageSummarizer interface {
	Summarize(ctx context.Context, userID string, day time.Time) (*model.UsageSummary, error)
}

// History looks up stored results.
type History interface {
	ListToneAnalyses(ctx context.Context, userID string, opts db.ListOptions) ([]model.ToneAnalysis, error)
	ListScriptGenerations(ctx context.Context, userID string, opts db.ListOptions) ([]model.ScriptGeneration, error)
	GetToneAnalysis(ctx context.Context, userID, id string) (*model.ToneAnalysis, error)
	GetScriptGeneration(ctx context.Context, userID, id string) (*model.ScriptGeneration, error)
}

// Billing manages subscriptions.
type Billing interface {
	CheckoutURL(ctx context.Context, userID, email string) (string, error)
	PortalURL(ctx context.Context, userID string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// TierSetter changes subscription tiers.
type TierSetter interface {
	Set(ctx context.Context, userID string, tier model.Tier, source string) error
}

// Replier sends responses to NATS requests.
type Replier interface {
	Reply(reply string, v interface{}) error
}

// Server holds the dependencies of the handlers.
type Server struct {
	Router  *echo.Echo
	Actions Actions
	Usage   UsageSummarizer
	History History
	Billing Billing
	Tiers   TierSetter
	Replier Replier
	Service string
	Title   string
	Version string
	Now     func() time.Time
}

func (s Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// currentUser returns the verified identity of the caller.
func currentUser(ctx echo.Context) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(ctx.Request().Context())
	if !ok || claims.Subject == "" {
		return nil, apperr.New(apperr.KindAuth, "missing auth context", "")
	}
	return claims, nil
}

// badRequestBody is returned when a request body can't be decoded.
func badRequestBody(err error) error {
	return apperr.Wrap(err, apperr.KindValidation, "invalid request body",
		"The request could not be read. Please send a JSON object with the expected fields.")
}

// RootHandler is the handler for the GET / endpoint.
//
// swagger:route GET / misc getRoot
//
// # General Service Information
//
// Lists general information about the service.
//
// responses:
//
//	200: rootResponse
func (s Server) RootHandler(ctx echo.Context) error {
	return model.Success(ctx, model.RootResponse{Service: s.Service, Title: s.Title, Version: s.Version}, http.StatusOK)
}

// V1RootHandler is the handler for the GET /v1 endpoint.
//
// swagger:route GET /v1 misc getV1Root
//
// # API Version Information
//
// Lists information about version 1 of the API.
//
// responses:
//
//	200: apiVersionResponse
func (s Server) V1RootHandler(ctx echo.Context) error {
	return model.Success(ctx, model.APIVersionResponse{Version: "v1"}, http.StatusOK)
}
