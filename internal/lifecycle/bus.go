// Package lifecycle distributes pipeline events to in-process subscribers
// and optional external notifiers. The event log is the source of truth;
// the bus persists first and fans out after.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Handler processes an event; return an error to signal failure.
type Handler func(eventstore.Event) error

// Bus is a synchronous pub/sub event bus. Publish persists the event when a
// store is configured, then runs the matching handlers in subscription
// order.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	store       eventstore.Store
	log         *slog.Logger
}

// NewBus creates a bus. store may be nil for a purely in-memory bus.
func NewBus(store eventstore.Store, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{subscribers: map[string][]Handler{}, store: store, log: logger}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
	b.mu.Unlock()
}

// SubscribeAll registers a handler for every known event type.
func (b *Bus) SubscribeAll(h Handler) {
	for _, t := range EventTypes {
		b.Subscribe(t, h)
	}
}

// Publish persists and delivers an event. A store failure is logged, never
// fatal; a handler failure stops delivery and is returned.
func (b *Bus) Publish(ctx context.Context, ev eventstore.Event) error {
	if b.store != nil {
		if err := eventstore.Record(ctx, b.store, ev); err != nil {
			b.log.Warn("event not persisted",
				logfields.SiteID(ev.SiteID()),
				slog.String("event_type", ev.Type()),
				logfields.Error(err))
		}
	}

	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[ev.Type()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(ev); err != nil {
			return err
		}
	}
	return nil
}

// EventTypes lists every event type the pipeline emits.
var EventTypes = []string{
	eventstore.TypeSiteGenerated,
	eventstore.TypeSiteBootstrapped,
	eventstore.TypeAssetsSubmitted,
	eventstore.TypeAssetSaved,
	eventstore.TypeAssetFetchFailed,
	eventstore.TypeSitePublished,
	eventstore.TypePublishFailed,
}
