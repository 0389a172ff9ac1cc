package attendance

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	presencesvc "github.com/cmlabs-hris/attendance-engine/internal/service/presence"
)

type IngestServiceImpl struct {
	normalizer      *Normalizer
	eventRepo       attendance.EventRepository
	directory       employee.Directory
	ledger          *presencesvc.Ledger
	dispatcher      notification.Dispatcher
	duplicateWindow time.Duration

	// employeeLocks serializes ingestion per employee from the duplicate
	// check through ledger update. An employee always maps to the same stripe.
	employeeLocks [lockStripes]sync.Mutex
	lockSeed      maphash.Seed
	// applyMu keeps publication in the same order as ledger application.
	applyMu sync.Mutex
}

const lockStripes = 64

func NewIngestService(
	normalizer *Normalizer,
	eventRepo attendance.EventRepository,
	directory employee.Directory,
	ledger *presencesvc.Ledger,
	dispatcher notification.Dispatcher,
	duplicateWindow time.Duration,
) *IngestServiceImpl {
	return &IngestServiceImpl{
		normalizer:      normalizer,
		eventRepo:       eventRepo,
		directory:       directory,
		ledger:          ledger,
		dispatcher:      dispatcher,
		duplicateWindow: duplicateWindow,
		lockSeed:        maphash.MakeSeed(),
	}
}

func (s *IngestServiceImpl) lockStripe(employeeID string) *sync.Mutex {
	return &s.employeeLocks[maphash.String(s.lockSeed, employeeID)%lockStripes]
}

func (s *IngestServiceImpl) lockEmployee(employeeID string) func() {
	mu := s.lockStripe(employeeID)
	mu.Lock()
	return mu.Unlock
}

// Ingest validates req, persists it and, for a known employee, applies it to
// the presence ledger and publishes a notification. An event is never
// applied unless it was stored first.
func (s *IngestServiceImpl) Ingest(ctx context.Context, req attendance.IngestRequest) (attendance.IngestResponse, error) {
	event, err := s.normalizer.Normalize(req)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			slog.Warn("Clock event rejected", "employee_id", req.EmployeeID, "reason", validationErrs.Error())
		}
		return attendance.IngestResponse{}, err
	}

	unlock := s.lockEmployee(event.EmployeeID)
	defer unlock()

	resolved := true
	emp, err := s.directory.Lookup(ctx, event.EmployeeID)
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Error("Employee directory unavailable", "employee_id", event.EmployeeID, "error", err)
			return attendance.IngestResponse{}, fmt.Errorf("%w: %v", attendance.ErrStorageUnavailable, err)
		}
		resolved = false
	}

	if resolved && s.isDuplicate(event) {
		slog.Warn("Duplicate clock event rejected", "employee_id", event.EmployeeID, "timestamp", event.Timestamp)
		return attendance.IngestResponse{}, attendance.ErrDuplicateEvent
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		slog.Error("Failed to persist clock event", "employee_id", event.EmployeeID, "sequence_no", event.SequenceNo, "error", err)
		return attendance.IngestResponse{}, fmt.Errorf("%w: %v", attendance.ErrStorageUnavailable, err)
	}

	resp := attendance.IngestResponse{
		SequenceNo:   event.SequenceNo,
		EmployeeID:   event.EmployeeID,
		Kind:         event.Kind,
		Timestamp:    event.Timestamp.Format(time.RFC3339),
		VerifyMethod: event.VerifyMethod,
		Resolved:     resolved,
	}

	if !resolved {
		slog.Warn("Clock event for unknown employee stored without presence update", "employee_id", event.EmployeeID, "sequence_no", event.SequenceNo)
		return resp, nil
	}

	if !emp.Active {
		slog.Debug("Clock event for inactive employee", "employee_id", event.EmployeeID)
	}

	s.applyMu.Lock()
	state := s.ledger.Apply(event)
	s.dispatcher.Publish(ctx, notification.Notification{
		EmployeeID:   event.EmployeeID,
		Name:         emp.Name,
		Kind:         event.Kind,
		Timestamp:    event.Timestamp,
		VerifyMethod: event.VerifyMethod,
	})
	s.applyMu.Unlock()

	resp.EmployeeName = emp.Name
	resp.Presence = string(state.Status)

	slog.Info("Clock event accepted",
		"employee_id", event.EmployeeID,
		"kind", event.Kind,
		"sequence_no", event.SequenceNo,
		"presence", state.Status,
	)
	return resp, nil
}

// isDuplicate reports whether event falls within the duplicate window of the
// employee's last applied event.
func (s *IngestServiceImpl) isDuplicate(event attendance.ClockEvent) bool {
	if s.duplicateWindow <= 0 {
		return false
	}
	state, ok := s.ledger.Get(event.EmployeeID)
	if !ok || state.LastEventTime.IsZero() || state.Status == presence.StatusUnknown {
		return false
	}
	delta := event.Timestamp.Sub(state.LastEventTime)
	if delta < 0 {
		delta = -delta
	}
	return delta < s.duplicateWindow
}
