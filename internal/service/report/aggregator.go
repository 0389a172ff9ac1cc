package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// PatternResolver returns the pattern for a name, falling back when unknown.
type PatternResolver interface {
	Resolve(name schedule.PatternName) schedule.Pattern
}

// Aggregator classifies every active employee-day in a date range.
type Aggregator struct {
	patterns PatternResolver
	loc      *time.Location
}

func NewAggregator(patterns PatternResolver, loc *time.Location) *Aggregator {
	return &Aggregator{patterns: patterns, loc: loc}
}

const dayKey = "2006-01-02"

// Aggregate classifies each active employee for every calendar day in the
// inclusive range [start, end], using the local date of each event. Events
// of inactive or unknown employees and events outside the range are ignored.
// Records are ordered by employee id, then date.
func (a *Aggregator) Aggregate(ctx context.Context, employees []employee.Employee, events []attendance.ClockEvent, start, end time.Time) (report.Result, error) {
	start, end = a.midnight(start), a.midnight(end)
	if start.After(end) {
		return report.Result{}, report.ErrInvalidRange
	}

	active := make([]employee.Employee, 0, len(employees))
	considered := make(map[string]struct{}, len(employees))
	for _, emp := range employees {
		if emp.Active {
			active = append(active, emp)
			considered[emp.EmployeeID] = struct{}{}
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].EmployeeID < active[j].EmployeeID })

	var days []time.Time
	for d := start; !d.After(end); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, a.loc) {
		days = append(days, d)
	}
	rangeEnd := days[len(days)-1].AddDate(0, 0, 1)

	groups := make(map[string]map[string][]attendance.ClockEvent)
	for _, ev := range events {
		if _, ok := considered[ev.EmployeeID]; !ok {
			continue
		}
		local := ev.Timestamp.In(a.loc)
		if local.Before(start) || !local.Before(rangeEnd) {
			continue
		}
		byDay, ok := groups[ev.EmployeeID]
		if !ok {
			byDay = make(map[string][]attendance.ClockEvent)
			groups[ev.EmployeeID] = byDay
		}
		key := local.Format(dayKey)
		byDay[key] = append(byDay[key], ev)
	}

	result := report.Result{
		Records: make([]report.DayRecord, 0, len(active)*len(days)),
	}
	var hoursSum float64
	var hoursCount int

	for _, emp := range active {
		if err := ctx.Err(); err != nil {
			return report.Result{}, err
		}
		pattern := a.patterns.Resolve(emp.SchedulePattern)
		for _, day := range days {
			dayEvents := groups[emp.EmployeeID][day.Format(dayKey)]
			record := Classify(emp.EmployeeID, day, dayEvents, pattern)
			result.Records = append(result.Records, record)
			if len(dayEvents) > 0 {
				result.Summary.TotalRecords++
			}

			switch record.Status {
			case report.StatusComplete:
				result.Summary.Complete++
			case report.StatusLate:
				result.Summary.Late++
				result.Summary.LateArrivals++
			case report.StatusIncomplete:
				result.Summary.Incomplete++
			}
			if record.HoursWorked > 0 {
				hoursSum += record.HoursWorked
				hoursCount++
			}
		}
	}

	result.Summary.TotalEmployees = len(active)
	if hoursCount > 0 {
		result.Summary.AverageHours = math.Round(hoursSum/float64(hoursCount)*100) / 100
	}
	return result, nil
}

// midnight keeps the calendar date of t and moves it to the report location.
func (a *Aggregator) midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}
