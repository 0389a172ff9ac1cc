package presence

import "context"

// SnapshotRepository persists the ledger across restarts.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, states map[string]PresenceState) error
	LoadSnapshot(ctx context.Context) (map[string]PresenceState, error)
}
