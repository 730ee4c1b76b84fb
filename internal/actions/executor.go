// Package actions runs the metered actions. Each action validates and screens its input, checks the user's
// entitlement, calls a provider, stores the result and only then records the usage.
package actions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/entitlement"
	"github.com/elucidare/tonewise/internal/metrics"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/provider"
	"github.com/elucidare/tonewise/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "actions"})

const (
	DefaultTextTimeout   = 15 * time.Second
	DefaultVoiceTimeout  = 30 * time.Second
	DefaultRequestBudget = 45 * time.Second
)

// State is a step in the life of a metered request.
type State string

const (
	StateReceived   State = "received"
	StateValidated  State = "validated"
	StateModerated  State = "moderated"
	StateGated      State = "gated"
	StateExecuting  State = "executing"
	StatePersisting State = "persisting"
	StateMetering   State = "metering"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Moderator screens user-supplied text.
type Moderator interface {
	Moderate(text string) model.ModerationVerdict
}

// Authorizer decides whether a user may perform an action.
type Authorizer interface {
	Authorize(ctx context.Context, userID string, feature model.FeatureKind) entitlement.Decision
}

// UsageRecorder records a successful action.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, userID string, feature model.FeatureKind) error
}

// ResultStore stores the results of text actions.
type ResultStore interface {
	SaveToneAnalysis(ctx context.Context, analysis *model.ToneAnalysis) error
	SaveScriptGeneration(ctx context.Context, generation *model.ScriptGeneration) error
}

// Executor runs metered actions.
type Executor struct {
	Filter  Moderator
	Gate    Authorizer
	Ledger  UsageRecorder
	Store   ResultStore
	Text    provider.TextGenerator
	Speech  provider.SpeechSynthesizer
	Timeout Timeouts
	NewID   func() string
	Now     func() time.Time
}

// Timeouts bounds the time spent on each request.
type Timeouts struct {
	Text   time.Duration
	Voice  time.Duration
	Budget time.Duration
}

// DefaultTimeouts returns the default request bounds.
func DefaultTimeouts() Timeouts {
	return Timeouts{Text: DefaultTextTimeout, Voice: DefaultVoiceTimeout, Budget: DefaultRequestBudget}
}

func (e *Executor) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Executor) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

// run tracks the progress of a single request.
type run struct {
	feature model.FeatureKind
	userID  string
	state   State
	started time.Time
	log     *logrus.Entry
}

func (e *Executor) begin(userID string, feature model.FeatureKind) *run {
	r := &run{
		feature: feature,
		userID:  userID,
		state:   StateReceived,
		started: e.now(),
		log:     log.WithFields(logging.UserFields(userID, string(feature))),
	}
	r.log.Debug("request received")
	return r
}

func (r *run) advance(state State) {
	r.log.Debugf("%s -> %s", r.state, state)
	r.state = state
}

// fail moves the request to the failed state and returns the classified error.
func (r *run) fail(err error) error {
	kind := apperr.KindOf(err)
	metrics.ActionFailures.WithLabelValues(string(r.feature), string(kind)).Inc()
	r.log.WithFields(logrus.Fields{"state": r.state, "kind": kind}).Warnf("request failed: %s", err)
	r.state = StateFailed
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Wrap(err, kind, "unclassified failure", "")
}

func (r *run) elapsedMS(now time.Time) int64 {
	return now.Sub(r.started).Milliseconds()
}

// screen runs the content filter over each piece of user-supplied text.
func (e *Executor) screen(texts ...string) error {
	for _, text := range texts {
		verdict := e.Filter.Moderate(text)
		if !verdict.IsAppropriate {
			return apperr.Validation(
				verdict.Reason,
				"Your text contains inappropriate language, so it was not sent. "+
					"Please remove words about violence, hate, harassment or swearing and try again.",
			)
		}
	}
	return nil
}

// gate checks the user's entitlement.
func (e *Executor) gate(ctx context.Context, r *run) error {
	decision := e.Gate.Authorize(ctx, r.userID, r.feature)
	if !decision.Allowed {
		return decision.Err()
	}
	return nil
}

// completeJSON calls the text provider under the text timeout.
func (e *Executor) completeJSON(ctx context.Context, r *run, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, orDefault(e.Timeout.Text, DefaultTextTimeout))
	defer cancel()

	started := time.Now()
	raw, err := e.Text.CompleteJSON(callCtx, system, user)
	metrics.ObserveProviderCall(e.Text.Name(), string(r.feature), started, err)
	if err != nil {
		return "", provider.Classify(err, e.Text.Name())
	}

	return raw, nil
}

// persist runs a storage operation that can't be cancelled once it has started.
func persist(ctx context.Context, save func(context.Context) error) error {
	if err := save(context.WithoutCancel(ctx)); err != nil {
		return apperr.Wrap(err, apperr.KindServer, "unable to store the result",
			"We could not save your result, so it was not counted against your limit. Please try again.")
	}
	return nil
}

// meter records the usage. A failure is logged by the ledger and never fails the request.
func (e *Executor) meter(ctx context.Context, r *run) {
	r.advance(StateMetering)
	_ = e.Ledger.RecordUsage(context.WithoutCancel(ctx), r.userID, r.feature)
}

func encodeJSON(v interface{}) (datatypes.JSON, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Server(err, "unable to encode the result")
	}
	return datatypes.JSON(encoded), nil
}
