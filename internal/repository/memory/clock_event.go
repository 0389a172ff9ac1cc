package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// ClockEventRepository keeps accepted events in process memory.
type ClockEventRepository struct {
	mu     sync.RWMutex
	events []attendance.ClockEvent
	// Err, when set, is returned by every call.
	Err error
}

func NewClockEventRepository() *ClockEventRepository {
	return &ClockEventRepository{}
}

func (r *ClockEventRepository) Save(ctx context.Context, event attendance.ClockEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *ClockEventRepository) ListByRange(ctx context.Context, from, to time.Time) ([]attendance.ClockEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var events []attendance.ClockEvent
	for _, e := range r.events {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			events = append(events, e)
		}
	}
	attendance.SortEvents(events)
	return events, nil
}

func (r *ClockEventRepository) ListRecent(ctx context.Context, limit int) ([]attendance.ClockEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	events := make([]attendance.ClockEvent, len(r.events))
	copy(events, r.events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[j].Before(events[i])
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *ClockEventRepository) CountSince(ctx context.Context, since time.Time) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return 0, 0, r.Err
	}

	total := 0
	unique := make(map[string]struct{})
	for _, e := range r.events {
		if !e.Timestamp.Before(since) {
			total++
			unique[e.EmployeeID] = struct{}{}
		}
	}
	return total, len(unique), nil
}

func (r *ClockEventRepository) MaxSequence(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return 0, r.Err
	}

	var highest uint64
	for _, e := range r.events {
		if e.SequenceNo > highest {
			highest = e.SequenceNo
		}
	}
	return highest, nil
}

// Len returns the number of stored events.
func (r *ClockEventRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// SetErr makes subsequent calls fail with err, or succeed again when err is nil.
func (r *ClockEventRepository) SetErr(err error) {
	r.mu.Lock()
	r.Err = err
	r.mu.Unlock()
}
