// Package events publishes usage and tier changes to NATS and subscribes to tier updates from other services.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elucidare/tonewise/config"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "events"})

const (
	SubjectUsageRecorded = "usage.recorded"
	SubjectTierChanged   = "tier.changed"
	SubjectTierSet       = "tiers.set"
)

// UsageEvent is published after a usage counter has been advanced.
type UsageEvent struct {
	UserID     string            `json:"user_id"`
	Feature    model.FeatureKind `json:"feature"`
	Date       string            `json:"date"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// TierEvent is published after a user's tier changes.
type TierEvent struct {
	UserID    string     `json:"user_id"`
	Tier      model.Tier `json:"tier"`
	Source    string     `json:"source"`
	ChangedAt time.Time  `json:"changed_at"`
}

// TierRequest asks the service to set a user's tier.
type TierRequest struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

// TierResponse is the reply to a tier request.
type TierResponse struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Publisher publishes service events.
type Publisher interface {
	PublishUsage(ctx context.Context, event *UsageEvent) error
	PublishTierChange(ctx context.Context, event *TierEvent) error
}

// Noop is a publisher that discards every event. It's used when NATS isn't configured.
type Noop struct{}

func (Noop) PublishUsage(context.Context, *UsageEvent) error     { return nil }
func (Noop) PublishTierChange(context.Context, *TierEvent) error { return nil }

// Subject builds a subject name beneath a base subject, ignoring any trailing wildcard on the base.
func Subject(base string, fields ...string) string {
	trimmed := strings.TrimSuffix(
		strings.TrimSuffix(base, ".*"),
		".>",
	)
	addFields := strings.Join(fields, ".")
	return fmt.Sprintf("%s.%s", trimmed, addFields)
}

// Queue builds a queue group name beneath a base queue name.
func Queue(qBase string, fields ...string) string {
	return fmt.Sprintf("%s.%s", qBase, strings.Join(fields, "."))
}

// encodedConn is the subset of the NATS encoded connection used by the bus.
type encodedConn interface {
	Publish(subject string, v interface{}) error
	QueueSubscribe(subject, queue string, cb nats.Handler) (*nats.Subscription, error)
	Close()
}

// Bus is a NATS-backed publisher.
type Bus struct {
	conn          encodedConn
	baseSubject   string
	baseQueueName string
}

// Connect establishes the NATS connection described by the configuration.
func Connect(spec *config.Specification) (*Bus, error) {
	wrapMsg := "unable to connect to NATS"

	options := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(spec.MaxReconnects),
		nats.ReconnectWait(time.Duration(spec.ReconnectWait) * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Errorf("disconnected from nats: %s", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			if err := nc.LastError(); err != nil {
				log.Errorf("connection closed: %s", err.Error())
			}
		}),
	}
	if spec.CredsPath != "" {
		options = append(options, nats.UserCredentials(spec.CredsPath))
	}
	if spec.CACertPath != "" {
		options = append(options, nats.RootCAs(spec.CACertPath))
	}
	if spec.TLSCertPath != "" && spec.TLSKeyPath != "" {
		options = append(options, nats.ClientCert(spec.TLSCertPath, spec.TLSKeyPath))
	}

	nc, err := nats.Connect(spec.NatsCluster, options...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	log.Infof("configured servers: %s", strings.Join(nc.Servers(), " "))
	log.Infof("connected to NATS host: %s", nc.ConnectedServerName())

	conn, err := nats.NewEncodedConn(nc, nats.JSON_ENCODER)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	log.Infof("set up encoded connection to NATS")

	return &Bus{conn: conn, baseSubject: spec.BaseSubject, baseQueueName: spec.BaseQueueName}, nil
}

// PublishUsage publishes a usage event.
func (b *Bus) PublishUsage(_ context.Context, event *UsageEvent) error {
	return b.conn.Publish(Subject(b.baseSubject, SubjectUsageRecorded), event)
}

// PublishTierChange publishes a tier change event.
func (b *Bus) PublishTierChange(_ context.Context, event *TierEvent) error {
	return b.conn.Publish(Subject(b.baseSubject, SubjectTierChanged), event)
}

// QueueSubscribe subscribes a handler to a subject beneath the base subject, sharing the work with the other
// instances of the service.
func (b *Bus) QueueSubscribe(name string, handler nats.Handler) error {
	subject := Subject(b.baseSubject, name)
	queue := Queue(b.baseQueueName, name)

	if _, err := b.conn.QueueSubscribe(subject, queue, handler); err != nil {
		return errors.Wrapf(err, "unable to subscribe to %s", subject)
	}

	log.Infof("subscribed to %s on queue %s", subject, queue)
	return nil
}

// Close closes the underlying connection.
func (b *Bus) Close() {
	b.conn.Close()
}

// Reply sends the response to a request. Nothing is sent if the requester didn't ask for a reply.
func (b *Bus) Reply(reply string, v interface{}) error {
	if reply == "" {
		return nil
	}
	return b.conn.Publish(reply, v)
}
