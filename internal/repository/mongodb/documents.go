package mongodb

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

type clockEventDocument struct {
	SequenceNo   int64     `bson:"_id"`
	EmployeeID   string    `bson:"employee_id"`
	Kind         string    `bson:"kind"`
	Timestamp    time.Time `bson:"timestamp"`
	VerifyMethod string    `bson:"verify_method"`
	ReaderNo     int       `bson:"reader_no"`
	RecordedAt   time.Time `bson:"recorded_at"`
}

func newClockEventDocument(e attendance.ClockEvent) clockEventDocument {
	return clockEventDocument{
		SequenceNo:   int64(e.SequenceNo),
		EmployeeID:   e.EmployeeID,
		Kind:         string(e.Kind),
		Timestamp:    e.Timestamp,
		VerifyMethod: e.VerifyMethod,
		ReaderNo:     e.ReaderNo,
		RecordedAt:   e.RecordedAt,
	}
}

func (d clockEventDocument) toEntity() attendance.ClockEvent {
	return attendance.ClockEvent{
		SequenceNo:   uint64(d.SequenceNo),
		EmployeeID:   d.EmployeeID,
		Kind:         attendance.Kind(d.Kind),
		Timestamp:    d.Timestamp,
		VerifyMethod: d.VerifyMethod,
		ReaderNo:     d.ReaderNo,
		RecordedAt:   d.RecordedAt,
	}
}

type employeeDocument struct {
	EmployeeID      string    `bson:"_id"`
	Name            string    `bson:"name"`
	Department      *string   `bson:"department,omitempty"`
	Phone           *string   `bson:"phone,omitempty"`
	Email           *string   `bson:"email,omitempty"`
	Active          bool      `bson:"active"`
	SchedulePattern string    `bson:"schedule_pattern"`
	SyncedToDevice  bool      `bson:"synced_to_device"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (d employeeDocument) toEntity() employee.Employee {
	return employee.Employee{
		EmployeeID:      d.EmployeeID,
		Name:            d.Name,
		Department:      d.Department,
		Phone:           d.Phone,
		Email:           d.Email,
		Active:          d.Active,
		SchedulePattern: schedule.PatternName(d.SchedulePattern),
		SyncedToDevice:  d.SyncedToDevice,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type presenceDocument struct {
	EmployeeID    string     `bson:"_id"`
	Status        string     `bson:"status"`
	LastEventTime *time.Time `bson:"last_event_time,omitempty"`
	LastEventKind string     `bson:"last_event_kind,omitempty"`
}

func newPresenceDocument(id string, s presence.PresenceState) presenceDocument {
	doc := presenceDocument{
		EmployeeID:    id,
		Status:        string(s.Status),
		LastEventKind: string(s.LastEventKind),
	}
	if !s.LastEventTime.IsZero() {
		t := s.LastEventTime
		doc.LastEventTime = &t
	}
	return doc
}

func (d presenceDocument) toEntity() presence.PresenceState {
	s := presence.PresenceState{
		Status:        presence.Status(d.Status),
		LastEventKind: attendance.Kind(d.LastEventKind),
	}
	if d.LastEventTime != nil {
		s.LastEventTime = *d.LastEventTime
	}
	return s
}

var (
	_ attendance.EventRepository  = (*ClockEventStore)(nil)
	_ employee.EmployeeRepository = (*EmployeeStore)(nil)
	_ presence.SnapshotRepository = (*PresenceSnapshotStore)(nil)
)
