package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

type DayStatus string

const (
	StatusComplete   DayStatus = "complete"
	StatusLate       DayStatus = "late"
	StatusIncomplete DayStatus = "incomplete"
)

// Match pairs a pattern checkpoint with the event assigned to it, if any.
type Match struct {
	Checkpoint schedule.Checkpoint
	Event      *attendance.ClockEvent
}

// DayRecord is the classification of one employee's events on one date.
// It is derived data and can always be recomputed from the events.
type DayRecord struct {
	EmployeeID  string
	Date        time.Time
	Pattern     schedule.PatternName
	Matches     []Match
	Status      DayStatus
	LateMinutes int
	HoursWorked float64
}

// MatchedEvents returns the assigned events in checkpoint order.
func (r DayRecord) MatchedEvents() []attendance.ClockEvent {
	events := make([]attendance.ClockEvent, 0, len(r.Matches))
	for _, m := range r.Matches {
		if m.Event != nil {
			events = append(events, *m.Event)
		}
	}
	return events
}

// EntryTime is the first matched entry-role event.
func (r DayRecord) EntryTime() *time.Time {
	for _, m := range r.Matches {
		if m.Event != nil && m.Checkpoint.Role == schedule.RoleEntry {
			t := m.Event.Timestamp
			return &t
		}
	}
	return nil
}

// ExitTime is the last matched exit-role event.
func (r DayRecord) ExitTime() *time.Time {
	for i := len(r.Matches) - 1; i >= 0; i-- {
		m := r.Matches[i]
		if m.Event != nil && m.Checkpoint.Role == schedule.RoleExit {
			t := m.Event.Timestamp
			return &t
		}
	}
	return nil
}

// Summary counts day records by status. TotalRecords counts only days with
// at least one event; LateArrivals counts days classified late.
type Summary struct {
	Complete       int     `json:"complete"`
	Late           int     `json:"late"`
	Incomplete     int     `json:"incomplete"`
	TotalEmployees int     `json:"total_employees"`
	TotalRecords   int     `json:"total_records"`
	LateArrivals   int     `json:"late_arrivals"`
	AverageHours   float64 `json:"average_hours"`
}

// Result is the output of a range aggregation.
type Result struct {
	Records []DayRecord
	Summary Summary
}
