package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

type ReportServiceImpl struct {
	eventRepo    attendance.EventRepository
	directory    employee.Directory
	aggregator   *Aggregator
	loc          *time.Location
	maxRangeDays int
	now          func() time.Time
}

func NewReportService(
	eventRepo attendance.EventRepository,
	directory employee.Directory,
	patterns PatternResolver,
	loc *time.Location,
	maxRangeDays int,
) report.ReportService {
	return &ReportServiceImpl{
		eventRepo:    eventRepo,
		directory:    directory,
		aggregator:   NewAggregator(patterns, loc),
		loc:          loc,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
	}
}

// GetAttendanceReport reads the events durably recorded for the range when
// the query starts and classifies them. Events arriving later are not included.
func (s *ReportServiceImpl) GetAttendanceReport(ctx context.Context, req report.AttendanceReportRequest) (report.AttendanceReport, error) {
	if err := req.Validate(); err != nil {
		return report.AttendanceReport{}, err
	}

	start, end := req.Dates(s.loc)
	if start.After(end) {
		return report.AttendanceReport{}, report.ErrInvalidRange
	}
	days := int(math.Round(end.Sub(start).Hours()/24)) + 1
	if s.maxRangeDays > 0 && days > s.maxRangeDays {
		return report.AttendanceReport{}, fmt.Errorf("%w: %d days requested, at most %d allowed", report.ErrRangeTooWide, days, s.maxRangeDays)
	}

	var employees []employee.Employee
	if req.EmployeeID != nil {
		emp, err := s.directory.Lookup(ctx, *req.EmployeeID)
		if err != nil {
			return report.AttendanceReport{}, err
		}
		employees = []employee.Employee{emp}
	} else {
		all, err := s.directory.Active(ctx)
		if err != nil {
			return report.AttendanceReport{}, fmt.Errorf("failed to load employees: %w", err)
		}
		employees = all
	}

	events, err := s.eventRepo.ListByRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return report.AttendanceReport{}, fmt.Errorf("%w: %v", attendance.ErrStorageUnavailable, err)
	}

	result, err := s.aggregator.Aggregate(ctx, employees, events, start, end)
	if err != nil {
		return report.AttendanceReport{}, err
	}

	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.EmployeeID] = emp.Name
	}

	records := make([]report.AttendanceRecord, 0, len(result.Records))
	for _, r := range result.Records {
		records = append(records, s.toRecord(r, names[r.EmployeeID]))
	}

	return report.AttendanceReport{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GeneratedAt: s.now().In(s.loc).Format(time.RFC3339),
		Records:     records,
		Summary:     result.Summary,
	}, nil
}

func (s *ReportServiceImpl) toRecord(r report.DayRecord, name string) report.AttendanceRecord {
	checkpoints := make([]report.CheckpointResponse, 0, len(r.Matches))
	for _, m := range r.Matches {
		cp := report.CheckpointResponse{
			Label:    m.Checkpoint.Label,
			Role:     string(m.Checkpoint.Role),
			Expected: m.Checkpoint.Expected.String(),
		}
		if m.Event != nil {
			actual := s.clock(m.Event.Timestamp)
			cp.Actual = &actual
		}
		checkpoints = append(checkpoints, cp)
	}

	record := report.AttendanceRecord{
		EmployeeID:   r.EmployeeID,
		EmployeeName: name,
		Date:         r.Date.Format("2006-01-02"),
		Status:       r.Status,
		LateMinutes:  r.LateMinutes,
		HoursWorked:  r.HoursWorked,
		Pattern:      string(r.Pattern),
		Checkpoints:  checkpoints,
	}
	if t := r.EntryTime(); t != nil {
		entry := s.clock(*t)
		record.EntryTime = &entry
	}
	if t := r.ExitTime(); t != nil {
		exit := s.clock(*t)
		record.ExitTime = &exit
	}
	return record
}

func (s *ReportServiceImpl) clock(t time.Time) string {
	return t.In(s.loc).Format("15:04:05")
}

var _ PatternResolver = (*schedule.Table)(nil)
