package attendance

import (
	"context"
	"time"
)

// EventRepository is the durable store for accepted clock events.
type EventRepository interface {
	// Save stores an accepted event. It must not return before the event is durable.
	Save(ctx context.Context, event ClockEvent) error

	// ListByRange returns events with from <= timestamp < to, ordered by timestamp then sequence.
	ListByRange(ctx context.Context, from, to time.Time) ([]ClockEvent, error)

	// ListRecent returns the newest events first.
	ListRecent(ctx context.Context, limit int) ([]ClockEvent, error)

	// CountSince returns the number of events and distinct employees since the given instant.
	CountSince(ctx context.Context, since time.Time) (total int, uniqueEmployees int, err error)

	// MaxSequence returns the highest stored sequence number, or 0 when empty.
	MaxSequence(ctx context.Context) (uint64, error)
}
