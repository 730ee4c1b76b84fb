// Package ledger advances the per-user usage counters after a metered action has succeeded.
package ledger

import (
	"context"
	"time"

	"github.com/elucidare/tonewise/internal/events"
	"github.com/elucidare/tonewise/internal/metrics"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/elucidare/tonewise/utils"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "ledger"})

// UsageWriter atomically adds to the usage counters of a user on a single day. Implementations must perform the
// increment as a single datastore operation.
type UsageWriter interface {
	IncrementUsage(ctx context.Context, userID string, day time.Time, inc model.UsageIncrement) error
}

// Ledger records usage.
type Ledger struct {
	Writer    UsageWriter
	Publisher events.Publisher
	Now       func() time.Time
}

// New creates a new ledger. Events are discarded if the publisher is nil.
func New(writer UsageWriter, publisher events.Publisher) *Ledger {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Ledger{Writer: writer, Publisher: publisher, Now: time.Now}
}

// RecordUsage records a single successful use of a feature. Failures are logged and returned, but callers are
// expected to ignore them: the action has already completed and the user keeps the result.
func (l *Ledger) RecordUsage(ctx context.Context, userID string, feature model.FeatureKind) error {
	log := log.WithFields(logging.UserFields(userID, string(feature)))

	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	day := utils.StartOfDay(now)

	if err := l.Writer.IncrementUsage(ctx, userID, day, model.IncrementFor(feature)); err != nil {
		metrics.UsageRecordFailures.WithLabelValues(string(feature)).Inc()
		log.Errorf("unable to record usage: %s", err)
		return err
	}
	metrics.UsageRecorded.WithLabelValues(string(feature)).Inc()
	log.Debug("recorded usage")

	event := &events.UsageEvent{
		UserID:     userID,
		Feature:    feature,
		Date:       day.Format(time.DateOnly),
		RecordedAt: now.UTC(),
	}
	if err := l.Publisher.PublishUsage(ctx, event); err != nil {
		log.Warnf("unable to publish the usage event: %s", err)
	}

	return nil
}
