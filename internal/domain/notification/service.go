package notification

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

// Dispatcher fans notifications out to live subscribers. Publishing never blocks.
// The span context of ctx travels with the notification; ctx is not retained.
type Dispatcher interface {
	Publish(ctx context.Context, n Notification)
	PublishAccessDenied(ctx context.Context, d AccessDenied)
	Subscribe() (id string, events <-chan sse.Event, cleanup func())
	Stats() Stats
}
