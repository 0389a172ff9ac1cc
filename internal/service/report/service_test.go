package report

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	employeesvc "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReportService(t *testing.T, events ...attendance.ClockEvent) (report.ReportService, *memory.ClockEventRepository) {
	t.Helper()
	table, err := schedule.DefaultTable(schedule.DefaultSettings())
	require.NoError(t, err)

	eventRepo := memory.NewClockEventRepository()
	for _, e := range events {
		require.NoError(t, eventRepo.Save(context.Background(), e))
	}
	directory := employeesvc.NewDirectoryService(memory.NewEmployeeRepository(testEmployees()...), nil, nil)
	return NewReportService(eventRepo, directory, table, testLoc, 31), eventRepo
}

func TestReportService_GetAttendanceReport(t *testing.T) {
	svc, _ := newTestReportService(t,
		ev(1, "E01", attendance.KindEntrada, at(monday, "08:05")),
		ev(2, "E01", attendance.KindSalida, at(monday, "17:00")),
	)

	rep, err := svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate: "2024-06-03",
		EndDate:   "2024-06-03",
	})
	require.NoError(t, err)

	require.Len(t, rep.Records, 3)
	first := rep.Records[0]
	assert.Equal(t, "E01", first.EmployeeID)
	assert.Equal(t, "Ana", first.EmployeeName)
	assert.Equal(t, "2024-06-03", first.Date)
	require.NotNil(t, first.EntryTime)
	assert.Equal(t, "08:05:00", *first.EntryTime)
	assert.Equal(t, "17:00:00", *first.ExitTime)
	assert.Equal(t, report.StatusLate, first.Status)
	assert.Equal(t, 8.9, first.HoursWorked)
	assert.Len(t, first.Checkpoints, 2)

	assert.Equal(t, 3, rep.Summary.TotalEmployees)
	assert.Equal(t, 1, rep.Summary.Late)
	assert.Equal(t, 2, rep.Summary.Incomplete)
}

func TestReportService_EmployeeFilter(t *testing.T) {
	svc, _ := newTestReportService(t)
	id := "E02"

	rep, err := svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-07",
		EmployeeID: &id,
	})
	require.NoError(t, err)
	assert.Len(t, rep.Records, 5)
	assert.Equal(t, 1, rep.Summary.TotalEmployees)

	missing := "E404"
	_, err = svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-03",
		EmployeeID: &missing,
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestReportService_RangeErrors(t *testing.T) {
	svc, _ := newTestReportService(t)

	_, err := svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate: "2024-06-10",
		EndDate:   "2024-06-01",
	})
	assert.ErrorIs(t, err, report.ErrInvalidRange)

	_, err = svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-06-01",
	})
	assert.ErrorIs(t, err, report.ErrRangeTooWide)

	_, err = svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate: "06/01/2024",
	})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Contains(t, validationErrs.ToMap(), "start_date")
	assert.Contains(t, validationErrs.ToMap(), "end_date")
}

func TestReportService_StorageUnavailable(t *testing.T) {
	svc, repo := newTestReportService(t)
	repo.SetErr(errors.New("connection refused"))

	_, err := svc.GetAttendanceReport(context.Background(), report.AttendanceReportRequest{
		StartDate: "2024-06-03",
		EndDate:   "2024-06-03",
	})
	assert.ErrorIs(t, err, attendance.ErrStorageUnavailable)
}
