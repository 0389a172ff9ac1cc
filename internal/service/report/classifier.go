package report

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// Classify assigns one employee's events for date to the pattern's
// checkpoints and derives status, lateness and hours worked. It is a pure
// function of its arguments; events is not modified.
//
// Checkpoints are walked in order. Each takes the first event after the
// previously assigned one whose kind matches its role, so an unmatched
// checkpoint never consumes events and surplus readings are ignored.
func Classify(employeeID string, date time.Time, events []attendance.ClockEvent, pattern schedule.Pattern) report.DayRecord {
	sorted := make([]attendance.ClockEvent, len(events))
	copy(sorted, events)
	attendance.SortEvents(sorted)

	checkpoints := pattern.CheckpointsOn(date)
	matches := make([]report.Match, len(checkpoints))
	cursor := 0
	allMatched := true
	for i, cp := range checkpoints {
		matches[i].Checkpoint = cp
		want := kindFor(cp.Role)
		for j := cursor; j < len(sorted); j++ {
			if sorted[j].Kind == want {
				ev := sorted[j]
				matches[i].Event = &ev
				cursor = j + 1
				break
			}
		}
		if matches[i].Event == nil {
			allMatched = false
		}
	}

	record := report.DayRecord{
		EmployeeID:  employeeID,
		Date:        date,
		Pattern:     pattern.Name,
		Matches:     matches,
		LateMinutes: lateMinutes(date, matches),
		HoursWorked: hoursWorked(matches),
	}

	switch {
	case !allMatched:
		record.Status = report.StatusIncomplete
	case record.LateMinutes > 0:
		record.Status = report.StatusLate
	default:
		record.Status = report.StatusComplete
	}
	return record
}

func kindFor(role schedule.Role) attendance.Kind {
	if role == schedule.RoleEntry {
		return attendance.KindEntrada
	}
	return attendance.KindSalida
}

// lateMinutes measures the first entry checkpoint. Arrivals within the
// checkpoint tolerance count as on time.
func lateMinutes(date time.Time, matches []report.Match) int {
	for _, m := range matches {
		if m.Checkpoint.Role != schedule.RoleEntry {
			continue
		}
		if m.Event == nil {
			return 0
		}
		expected := m.Checkpoint.Expected.On(date)
		delay := int(m.Event.Timestamp.Sub(expected) / time.Minute)
		if delay <= m.Checkpoint.ToleranceMinutes {
			return 0
		}
		return delay
	}
	return 0
}

// hoursWorked sums consecutive entry/exit pairs, rounded to one decimal.
func hoursWorked(matches []report.Match) float64 {
	var total time.Duration
	for i := 0; i+1 < len(matches); i += 2 {
		entry, exit := matches[i].Event, matches[i+1].Event
		if entry == nil || exit == nil {
			continue
		}
		if d := exit.Timestamp.Sub(entry.Timestamp); d > 0 {
			total += d
		}
	}
	return math.Round(total.Hours()*10) / 10
}
