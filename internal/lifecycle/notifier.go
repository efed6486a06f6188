package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

const streamName = "SITEBUILDER"

// Envelope is the JSON message published for each lifecycle event.
type Envelope struct {
	SiteID    string          `json:"site_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds the wire message for an event.
func NewEnvelope(ev eventstore.Event) Envelope {
	return Envelope{
		SiteID:    ev.SiteID(),
		Type:      ev.Type(),
		Timestamp: ev.Timestamp(),
		Payload:   json.RawMessage(ev.Payload()),
	}
}

// Notifier publishes lifecycle events to a NATS JetStream subject so
// external agents (asset producers, orchestration flows) can react to
// pipeline progress without polling.
type Notifier struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	log     *slog.Logger
}

// NewNotifier connects to NATS and ensures the lifecycle stream exists.
// subject is the publish prefix; events go to "<subject>.<EventType>".
func NewNotifier(url, subject string, logger *slog.Logger) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	n := &Notifier{conn: conn, js: js, subject: subject, log: logger}
	if err := n.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("lifecycle notifier connected", logfields.URL(url), slog.String("subject", subject))
	return n, nil
}

func (n *Notifier) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Site pipeline lifecycle events",
		Subjects:    []string{n.subject + ".>"},
		MaxAge:      7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure lifecycle stream: %w", err)
	}
	return nil
}

// Publish sends one event envelope.
func (n *Notifier) Publish(ctx context.Context, ev eventstore.Event) error {
	data, err := json.Marshal(NewEnvelope(ev))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if _, err := n.js.Publish(ctx, n.subject+"."+ev.Type(), data); err != nil {
		return fmt.Errorf("publish lifecycle event: %w", err)
	}
	return nil
}

// Attach subscribes the notifier on a bus. Notification failures are
// logged; they never fail the pipeline operation that emitted the event.
func (n *Notifier) Attach(bus *Bus) {
	bus.SubscribeAll(func(ev eventstore.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.Publish(ctx, ev); err != nil {
			n.log.Warn("lifecycle notification failed",
				logfields.SiteID(ev.SiteID()),
				slog.String("event_type", ev.Type()),
				logfields.Error(err))
		}
		return nil
	})
}

// Close drains the connection.
func (n *Notifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
