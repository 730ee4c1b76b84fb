package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/auth"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/events"
	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockActions struct {
	mock.Mock
}

func (m *mockActions) AnalyzeTone(ctx context.Context, userID string, req httpmodel.ToneAnalysisRequest) (*model.ToneAnalysisResponse, error) {
	args := m.Called(userID, req)
	result, _ := args.Get(0).(*model.ToneAnalysisResponse)
	return result, args.Error(1)
}

func (m *mockActions) GenerateScripts(ctx context.Context, userID string, req httpmodel.ScriptGenerationRequest) (*model.ScriptGenerationResponse, error) {
	args := m.Called(userID, req)
	result, _ := args.Get(0).(*model.ScriptGenerationResponse)
	return result, args.Error(1)
}

func (m *mockActions) SynthesizeVoice(ctx context.Context, userID string, req httpmodel.VoiceSynthesisRequest) (*model.VoiceResult, error) {
	args := m.Called(userID, req)
	result, _ := args.Get(0).(*model.VoiceResult)
	return result, args.Error(1)
}

type mockUsage struct {
	mock.Mock
}

func (m *mockUsage) Summarize(ctx context.Context, userID string, day time.Time) (*model.UsageSummary, error) {
	args := m.Called(userID, day)
	summary, _ := args.Get(0).(*model.UsageSummary)
	return summary, args.Error(1)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) ListToneAnalyses(ctx context.Context, userID string, opts db.ListOptions) ([]model.ToneAnalysis, error) {
	args := m.Called(userID, opts)
	analyses, _ := args.Get(0).([]model.ToneAnalysis)
	return analyses, args.Error(1)
}

func (m *mockHistory) ListScriptGenerations(ctx context.Context, userID string, opts db.ListOptions) ([]model.ScriptGeneration, error) {
	args := m.Called(userID, opts)
	generations, _ := args.Get(0).([]model.ScriptGeneration)
	return generations, args.Error(1)
}

func (m *mockHistory) GetToneAnalysis(ctx context.Context, userID, id string) (*model.ToneAnalysis, error) {
	args := m.Called(userID, id)
	analysis, _ := args.Get(0).(*model.ToneAnalysis)
	return analysis, args.Error(1)
}

func (m *mockHistory) GetScriptGeneration(ctx context.Context, userID, id string) (*model.ScriptGeneration, error) {
	args := m.Called(userID, id)
	generation, _ := args.Get(0).(*model.ScriptGeneration)
	return generation, args.Error(1)
}

type mockBilling struct {
	mock.Mock
}

func (m *mockBilling) CheckoutURL(ctx context.Context, userID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockBilling) PortalURL(ctx context.Context, userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *mockBilling) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(string(payload), signature).Error(0)
}

type mockTiers struct {
	mock.Mock
}

func (m *mockTiers) Set(ctx context.Context, userID string, tier model.Tier, source string) error {
	return m.Called(userID, tier, source).Error(0)
}

type recordingReplier struct {
	replies map[string]interface{}
}

func (r *recordingReplier) Reply(reply string, v interface{}) error {
	if r.replies == nil {
		r.replies = make(map[string]interface{})
	}
	r.replies[reply] = v
	return nil
}

var testNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	server  Server
	actions *mockActions
	usage   *mockUsage
	history *mockHistory
	billing *mockBilling
}

// withUser simulates the authentication middleware.
func withUser(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if userID != "" {
				claims := &auth.Claims{Subject: userID, Email: userID + "@example.com"}
				ctx.SetRequest(ctx.Request().WithContext(auth.WithClaims(ctx.Request().Context(), claims)))
			}
			return next(ctx)
		}
	}
}

func newFixture(userID string) *fixture {
	f := &fixture{
		actions: &mockActions{},
		usage:   &mockUsage{},
		history: &mockHistory{},
		billing: &mockBilling{},
	}
	e := echo.New()
	f.server = Server{
		Router:  e,
		Actions: f.actions,
		Usage:   f.usage,
		History: f.history,
		Billing: f.billing,
		Service: "tonewise",
		Title:   "ToneWise",
		Version: "1.0.0",
		Now:     func() time.Time { return testNow },
	}

	e.GET("/", f.server.RootHandler)
	e.POST("/v1/billing/webhook", f.server.StripeWebhook)
	v1 := e.Group("/v1", withUser(userID))
	v1.POST("/tone-analyses", f.server.AnalyzeTone)
	v1.GET("/tone-analyses", f.server.ListToneAnalyses)
	v1.GET("/tone-analyses/:id", f.server.GetToneAnalysis)
	v1.POST("/scripts", f.server.GenerateScripts)
	v1.GET("/scripts", f.server.ListScriptGenerations)
	v1.POST("/voice", f.server.SynthesizeVoice)
	v1.GET("/usage", f.server.GetUsage)
	v1.POST("/billing/checkout", f.server.CreateCheckoutSession)
	v1.POST("/billing/portal", f.server.CreatePortalSession)

	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.server.Router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorBody {
	t.Helper()
	var body model.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRootHandler(t *testing.T) {
	f := newFixture("")
	rec := f.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"tonewise"`)
}

func TestAnalyzeTone(t *testing.T) {
	f := newFixture("alice")
	f.actions.On("AnalyzeTone", "alice", httpmodel.ToneAnalysisRequest{Text: "Please reply soon."}).
		Return(&model.ToneAnalysisResponse{
			ID:               "4b1a8a40-0a4e-4c55-9f3e-5d1c1c0f2a11",
			ToneResult:       model.ToneResult{Confidence: 0.8, Suggestions: []string{}},
			ProcessingTimeMS: 120,
		}, nil)

	rec := f.do(http.MethodPost, "/v1/tone-analyses", `{"text": "Please reply soon."}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Result model.ToneAnalysisResponse `json:"result"`
		Status string                     `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "4b1a8a40-0a4e-4c55-9f3e-5d1c1c0f2a11", body.Result.ID)
	assert.Equal(t, int64(120), body.Result.ProcessingTimeMS)
	assert.Equal(t, "OK", body.Status)
}

func TestActionErrorsAreClassified(t *testing.T) {
	f := newFixture("alice")
	f.actions.On("AnalyzeTone", "alice", mock.Anything).
		Return(nil, apperr.New(apperr.KindRateLimit, "Daily usage limit exceeded", "You have used all 5 tone analyses for today."))

	rec := f.do(http.MethodPost, "/v1/tone-analyses", `{"text": "Hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperr.KindRateLimit, body.Kind)
	assert.Equal(t, "You have used all 5 tone analyses for today.", body.Message)
}

func TestActionsRequireUser(t *testing.T) {
	f := newFixture("")
	rec := f.do(http.MethodPost, "/v1/scripts", `{"situation_context": "x", "relationship_type": "friend"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperr.KindAuth, decodeError(t, rec).Kind)
	f.actions.AssertNotCalled(t, "GenerateScripts", mock.Anything, mock.Anything)
}

func TestMalformedBodyIsRejected(t *testing.T) {
	f := newFixture("alice")
	rec := f.do(http.MethodPost, "/v1/scripts", `{"situation_context": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindValidation, decodeError(t, rec).Kind)
}

func TestSynthesizeVoice(t *testing.T) {
	f := newFixture("bob")
	f.actions.On("SynthesizeVoice", "bob", mock.Anything).
		Return(&model.VoiceResult{Audio: []byte("ID3"), ContentType: "audio/mpeg", ProcessingTimeMS: 900}, nil)

	rec := f.do(http.MethodPost, "/v1/voice", `{"text": "Hello", "voice": "nova", "speed": 1.25}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "900", rec.Header().Get(ProcessingTimeHeader))
	assert.Equal(t, "ID3", rec.Body.String())

	req := f.actions.Calls[0].Arguments.Get(1).(httpmodel.VoiceSynthesisRequest)
	require.NotNil(t, req.Speed)
	assert.Equal(t, 1.25, *req.Speed)
}

func TestSynthesizeVoicePermissionDenied(t *testing.T) {
	f := newFixture("alice")
	f.actions.On("SynthesizeVoice", "alice", mock.Anything).
		Return(nil, apperr.New(apperr.KindPermission, "Premium subscription required", ""))

	rec := f.do(http.MethodPost, "/v1/voice", `{"text": "Hello", "voice": "nova"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperr.KindPermission, decodeError(t, rec).Kind)
}

func TestGetUsage(t *testing.T) {
	f := newFixture("alice")
	today := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	f.usage.On("Summarize", "alice", today).Return(&model.UsageSummary{UserID: "alice", Date: "2026-03-14"}, nil)
	f.usage.On("Summarize", "alice", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)).
		Return(&model.UsageSummary{UserID: "alice", Date: "2026-03-01"}, nil)

	rec := f.do(http.MethodGet, "/v1/usage", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2026-03-14"`)

	rec = f.do(http.MethodGet, "/v1/usage?date=2026-03-01", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2026-03-01"`)

	rec = f.do(http.MethodGet, "/v1/usage?date=someday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListToneAnalyses(t *testing.T) {
	f := newFixture("alice")
	f.history.On("ListToneAnalyses", "alice", db.ListOptions{Offset: 5, Limit: 10, SortOrder: "asc"}).
		Return([]model.ToneAnalysis{{ID: "4b1a8a40-0a4e-4c55-9f3e-5d1c1c0f2a11", InputText: "Hi"}}, nil)

	rec := f.do(http.MethodGet, "/v1/tone-analyses?offset=5&limit=10&sort-order=asc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"input_text":"Hi"`)

	rec = f.do(http.MethodGet, "/v1/tone-analyses?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetToneAnalysis(t *testing.T) {
	f := newFixture("alice")
	id := "4b1a8a40-0a4e-4c55-9f3e-5d1c1c0f2a11"
	missing := "9d7c2f8e-8a55-4d3b-8a0c-0e2f2b1f0c77"
	f.history.On("GetToneAnalysis", "alice", id).Return(&model.ToneAnalysis{ID: id}, nil)
	f.history.On("GetToneAnalysis", "alice", missing).Return(nil, nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/tone-analyses/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/tone-analyses/"+missing, "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/v1/tone-analyses/not-a-uuid", "").Code)
}

func TestBillingEndpoints(t *testing.T) {
	f := newFixture("alice")
	f.billing.On("CheckoutURL", "alice", "alice@example.com").Return("https://checkout.example.com/cs_1", nil)
	f.billing.On("PortalURL", "alice").
		Return("", apperr.Validation("no Stripe customer for the user", "You don't have a subscription to manage yet."))

	rec := f.do(http.MethodPost, "/v1/billing/checkout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"https://checkout.example.com/cs_1"`)

	rec = f.do(http.MethodPost, "/v1/billing/portal", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStripeWebhook(t *testing.T) {
	f := newFixture("")
	f.billing.On("HandleWebhook", `{"id": "evt_1"}`, "t=1,v1=abc").Return(nil)
	f.billing.On("HandleWebhook", `{"id": "evt_2"}`, "bad").
		Return(apperr.Validation("signature verification failed", ""))

	req := httptest.NewRequest(http.MethodPost, "/v1/billing/webhook", strings.NewReader(`{"id": "evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	f.server.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/billing/webhook", strings.NewReader(`{"id": "evt_2"}`))
	req.Header.Set("Stripe-Signature", "bad")
	rec = httptest.NewRecorder()
	f.server.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetTierNATS(t *testing.T) {
	tierSetter := &mockTiers{}
	tierSetter.On("Set", "alice", model.TierPremium, "nats").Return(nil)
	replier := &recordingReplier{}
	s := Server{Tiers: tierSetter, Replier: replier}

	s.SetTierNATS("elucidare.tonewise.tiers.set", "_INBOX.1", &events.TierRequest{UserID: "alice", Tier: " Premium "})
	s.SetTierNATS("elucidare.tonewise.tiers.set", "_INBOX.2", &events.TierRequest{UserID: "alice", Tier: "platinum"})
	s.SetTierNATS("elucidare.tonewise.tiers.set", "_INBOX.3", &events.TierRequest{Tier: "free"})

	tierSetter.AssertNumberOfCalls(t, "Set", 1)

	ok := replier.replies["_INBOX.1"].(*events.TierResponse)
	assert.Equal(t, "premium", ok.Tier)
	assert.Empty(t, ok.Error)

	assert.NotEmpty(t, replier.replies["_INBOX.2"].(*events.TierResponse).Error)
	assert.NotEmpty(t, replier.replies["_INBOX.3"].(*events.TierResponse).Error)
}
