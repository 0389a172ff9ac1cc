package presence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
)

const recentEventsLimit = 10

type PresenceServiceImpl struct {
	ledger    *Ledger
	directory employee.Directory
	events    attendance.EventRepository
	snapshots presence.SnapshotRepository
	source    presence.EventSource
	loc       *time.Location
	now       func() time.Time
}

func NewPresenceService(
	ledger *Ledger,
	directory employee.Directory,
	events attendance.EventRepository,
	snapshots presence.SnapshotRepository,
	loc *time.Location,
) *PresenceServiceImpl {
	return &PresenceServiceImpl{
		ledger:    ledger,
		directory: directory,
		events:    events,
		snapshots: snapshots,
		loc:       loc,
		now:       time.Now,
	}
}

// SetEventSource attaches the collaborator reporting connected/monitoring.
func (s *PresenceServiceImpl) SetEventSource(source presence.EventSource) {
	s.source = source
}

// Query returns the inside/outside partition of active employees together
// with today's counters and the most recent events.
func (s *PresenceServiceImpl) Query(ctx context.Context) (presence.PresenceResponse, error) {
	employees, err := s.directory.All(ctx)
	if err != nil {
		return presence.PresenceResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.EmployeeID] = emp.Name
	}

	inside, outside := s.ledger.Partition(employees)

	now := s.now().In(s.loc)
	total, unique, err := s.events.CountSince(ctx, startOfDay(now))
	if err != nil {
		return presence.PresenceResponse{}, fmt.Errorf("%w: %v", attendance.ErrStorageUnavailable, err)
	}

	recent, err := s.events.ListRecent(ctx, recentEventsLimit)
	if err != nil {
		return presence.PresenceResponse{}, fmt.Errorf("%w: %v", attendance.ErrStorageUnavailable, err)
	}
	recentResp := make([]attendance.EventResponse, 0, len(recent))
	for _, ev := range recent {
		recentResp = append(recentResp, attendance.NewEventResponse(ev, names[ev.EmployeeID], s.loc))
	}

	resp := presence.PresenceResponse{
		Inside:               s.toEntries(inside),
		Outside:              s.toEntries(outside),
		TotalEventsToday:     total,
		UniqueEmployeesToday: unique,
		Recent:               recentResp,
		GeneratedAt:          now.Format(time.RFC3339),
	}
	if s.source != nil {
		resp.Connected = s.source.Connected()
		resp.Monitoring = s.source.Monitoring()
	}
	return resp, nil
}

func (s *PresenceServiceImpl) toEntries(placements []Placement) []presence.PresenceEntry {
	entries := make([]presence.PresenceEntry, 0, len(placements))
	for _, p := range placements {
		entry := presence.PresenceEntry{
			EmployeeID: p.Employee.EmployeeID,
			Name:       p.Employee.Name,
		}
		if p.State.Status != presence.StatusUnknown && !p.State.LastEventTime.IsZero() {
			since := p.State.LastEventTime.In(s.loc).Format(time.RFC3339)
			entry.Since = &since
		}
		entries = append(entries, entry)
	}
	return entries
}

// Restore loads the last flushed snapshot into the ledger and tracks every
// employee in the directory.
func (s *PresenceServiceImpl) Restore(ctx context.Context) error {
	employees, err := s.directory.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load employees: %w", err)
	}
	for _, emp := range employees {
		s.ledger.Track(emp.EmployeeID)
	}

	if s.snapshots == nil {
		return nil
	}
	states, err := s.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load presence snapshot: %w", err)
	}
	s.ledger.Restore(states)
	// a snapshot from a previous day is stale
	s.ledger.ResetBefore(startOfDay(s.now().In(s.loc)))

	slog.Info("Presence ledger restored", "employees", len(employees), "snapshot_entries", len(states))
	return nil
}

// Flush persists the current ledger snapshot.
func (s *PresenceServiceImpl) Flush(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	snapshot := s.ledger.Snapshot()
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save presence snapshot: %w", err)
	}
	slog.Debug("Presence snapshot flushed", "entries", len(snapshot))
	return nil
}

// ResetDay moves employees not seen today back to unknown.
func (s *PresenceServiceImpl) ResetDay(ctx context.Context) error {
	reset := s.ledger.ResetBefore(startOfDay(s.now().In(s.loc)))
	if reset > 0 {
		slog.Info("Presence reset for new day", "employees", reset)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
