package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, siteID, eventType string, payload []byte, metadata map[string]string) error

	// GetBySiteID retrieves all events for a specific site.
	GetBySiteID(ctx context.Context, siteID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Prune deletes events older than cutoff and returns the number removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// Record appends a prepared event to a store. It exists so callers can emit
// typed event values without repeating the field plumbing.
func Record(ctx context.Context, store Store, ev Event) error {
	if store == nil {
		return nil
	}
	return store.Append(ctx, ev.SiteID(), ev.Type(), ev.Payload(), ev.Metadata())
}
