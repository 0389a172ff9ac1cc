package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
)

type PresenceSnapshotRepository struct {
	mu     sync.Mutex
	states map[string]presence.PresenceState
}

func NewPresenceSnapshotRepository() *PresenceSnapshotRepository {
	return &PresenceSnapshotRepository{states: make(map[string]presence.PresenceState)}
}

func (r *PresenceSnapshotRepository) SaveSnapshot(ctx context.Context, states map[string]presence.PresenceState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = make(map[string]presence.PresenceState, len(states))
	for id, s := range states {
		r.states[id] = s
	}
	return nil
}

func (r *PresenceSnapshotRepository) LoadSnapshot(ctx context.Context) (map[string]presence.PresenceState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]presence.PresenceState, len(r.states))
	for id, s := range r.states {
		out[id] = s
	}
	return out, nil
}
