package mongodb

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type PresenceSnapshotStore struct {
	snapshot *mongo.Collection
}

func NewPresenceSnapshotStore(db *MongoDB) *PresenceSnapshotStore {
	return &PresenceSnapshotStore{snapshot: db.Collection(collectionPresence)}
}

func (s *PresenceSnapshotStore) SaveSnapshot(ctx context.Context, states map[string]presence.PresenceState) error {
	if _, err := s.snapshot.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear presence snapshot: %w", err)
	}
	if len(states) == 0 {
		return nil
	}

	docs := make([]presenceDocument, 0, len(states))
	for id, st := range states {
		docs = append(docs, newPresenceDocument(id, st))
	}
	if _, err := s.snapshot.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert presence snapshot: %w", err)
	}
	return nil
}

func (s *PresenceSnapshotStore) LoadSnapshot(ctx context.Context) (map[string]presence.PresenceState, error) {
	cursor, err := s.snapshot.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find presence snapshot: %w", err)
	}

	var docs []presenceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode presence snapshot: %w", err)
	}

	states := make(map[string]presence.PresenceState, len(docs))
	for _, d := range docs {
		states[d.EmployeeID] = d.toEntity()
	}
	return states, nil
}
