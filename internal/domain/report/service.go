package report

import "context"

type ReportService interface {
	// GetAttendanceReport classifies every active employee-day in the inclusive range.
	GetAttendanceReport(ctx context.Context, req AttendanceReportRequest) (AttendanceReport, error)
}
