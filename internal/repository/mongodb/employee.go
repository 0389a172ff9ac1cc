package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type EmployeeStore struct {
	employees *mongo.Collection
}

func NewEmployeeStore(db *MongoDB) *EmployeeStore {
	return &EmployeeStore{employees: db.Collection(collectionEmployees)}
}

func (s *EmployeeStore) List(ctx context.Context) ([]employee.Employee, error) {
	cursor, err := s.employees.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}

	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}

	employees := make([]employee.Employee, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, d.toEntity())
	}
	return employees, nil
}

func (s *EmployeeStore) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var doc employeeDocument
	err := s.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if err != nil {
		return employee.Employee{}, fmt.Errorf("find employee %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

// Upsert updates name and sync flag of an existing employee; the remaining
// fields are only written when the document is created.
func (s *EmployeeStore) Upsert(ctx context.Context, e employee.Employee) (bool, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":             e.Name,
			"synced_to_device": e.SyncedToDevice,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"department":       e.Department,
			"phone":            e.Phone,
			"email":            e.Email,
			"active":           e.Active,
			"schedule_pattern": string(e.SchedulePattern),
			"created_at":       now,
		},
	}

	res, err := s.employees.UpdateOne(ctx, bson.M{"_id": e.EmployeeID}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert employee %s: %w", e.EmployeeID, err)
	}
	return res.UpsertedCount > 0, nil
}
