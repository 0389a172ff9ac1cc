package presence

import "context"

// EventSource reports the state of the collaborator that feeds raw events.
type EventSource interface {
	Connected() bool
	Monitoring() bool
}

type PresenceService interface {
	Query(ctx context.Context) (PresenceResponse, error)
}
