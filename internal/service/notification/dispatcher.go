package notification

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type DispatcherImpl struct {
	hub       *sse.Hub
	published atomic.Uint64
}

// NewDispatcher creates a dispatcher over hub. Overflow policy is the hub's:
// a full subscriber queue drops the new notification and keeps the subscriber.
func NewDispatcher(hub *sse.Hub) *DispatcherImpl {
	return &DispatcherImpl{hub: hub}
}

// Publish pushes n to every connected subscriber. It never blocks and never fails.
func (d *DispatcherImpl) Publish(ctx context.Context, n notification.Notification) {
	d.broadcast(ctx, notification.EventAttendanceRecord, n.EmployeeID, n.Payload())
}

func (d *DispatcherImpl) PublishAccessDenied(ctx context.Context, a notification.AccessDenied) {
	d.broadcast(ctx, notification.EventAccessDenied, a.EmployeeID, a.Payload())
}

func (d *DispatcherImpl) broadcast(ctx context.Context, name, employeeID string, payload interface{}) {
	d.published.Add(1)
	event := sse.Event{
		ID:    uuid.NewString(),
		Event: name,
		Data:  payload,
		Trace: trace.SpanContextFromContext(ctx),
	}
	delivered, dropped := d.hub.Broadcast(event)
	if dropped > 0 {
		slog.Debug("Notification dropped for slow subscribers",
			"notification_id", event.ID,
			"event", name,
			"employee_id", employeeID,
			"delivered", delivered,
			"dropped", dropped,
		)
	}
}

func (d *DispatcherImpl) Subscribe() (string, <-chan sse.Event, func()) {
	return d.hub.Subscribe()
}

func (d *DispatcherImpl) Stats() notification.Stats {
	return notification.Stats{
		Subscribers: d.hub.SubscriberCount(),
		Published:   d.published.Load(),
		Dropped:     d.hub.Dropped(),
	}
}
