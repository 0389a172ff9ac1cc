package sse

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	ID    string
	Event string
	Data  interface{}
	// Trace is the span that produced the event, for subscribers that
	// forward it out of process. Zero when the producer was not traced.
	Trace trace.SpanContext
}

// Hub manages SSE subscribers and event broadcasting. Each subscriber owns a
// bounded queue; when it is full the new event is dropped for that
// subscriber only and the subscriber stays connected.
type Hub struct {
	mu          sync.RWMutex
	queueSize   int
	subscribers map[string]chan Event
	dropped     atomic.Uint64
}

// NewHub creates a new SSE Hub instance
func NewHub(queueSize int) *Hub {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Hub{
		queueSize:   queueSize,
		subscribers: make(map[string]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its id, event channel and cleanup function.
// The channel is closed by cleanup, which is safe to call more than once.
func (h *Hub) Subscribe() (string, <-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, h.queueSize)
	h.subscribers[id] = ch

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, id)
			close(ch)
		})
	}

	return id, ch, cleanup
}

// Broadcast offers event to every subscriber without blocking.
func (h *Hub) Broadcast(event Event) (delivered, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- event:
			delivered++
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.dropped.Add(uint64(dropped))
	}
	return delivered, dropped
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the total number of events dropped on full queues.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
