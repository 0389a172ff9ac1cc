package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ClockEventStore struct {
	events *mongo.Collection
}

func NewClockEventStore(ctx context.Context, db *MongoDB) (*ClockEventStore, error) {
	events := db.Collection(collectionClockEvents)

	if _, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "timestamp", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create clock_events indexes: %w", err)
	}

	return &ClockEventStore{events: events}, nil
}

func (s *ClockEventStore) Save(ctx context.Context, event attendance.ClockEvent) error {
	if _, err := s.events.InsertOne(ctx, newClockEventDocument(event)); err != nil {
		return fmt.Errorf("insert clock event %d: %w", event.SequenceNo, err)
	}
	return nil
}

func (s *ClockEventStore) ListByRange(ctx context.Context, from, to time.Time) ([]attendance.ClockEvent, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from, "$lt": to}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *ClockEventStore) ListRecent(ctx context.Context, limit int) ([]attendance.ClockEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, opts)
}

func (s *ClockEventStore) CountSince(ctx context.Context, since time.Time) (int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": "$employee_id", "n": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.events.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("count clock events: %w", err)
	}

	var groups []struct {
		EmployeeID string `bson:"_id"`
		N          int    `bson:"n"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return 0, 0, fmt.Errorf("decode clock event counts: %w", err)
	}

	total := 0
	for _, g := range groups {
		total += g.N
	}
	return total, len(groups), nil
}

func (s *ClockEventStore) MaxSequence(ctx context.Context) (uint64, error) {
	var doc clockEventDocument
	err := s.events.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find max sequence: %w", err)
	}
	return uint64(doc.SequenceNo), nil
}

func (s *ClockEventStore) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]attendance.ClockEvent, error) {
	cursor, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find clock events: %w", err)
	}

	var docs []clockEventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clock events: %w", err)
	}

	events := make([]attendance.ClockEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toEntity())
	}
	return events, nil
}
