package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type AttendanceReportRequest struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *AttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if r.EmployeeID != nil && !validator.IsValidEmployeeID(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id has an invalid format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the parsed calendar dates at midnight in loc. Call Validate first.
func (r *AttendanceReportRequest) Dates(loc *time.Location) (start, end time.Time) {
	start, _ = time.ParseInLocation("2006-01-02", r.StartDate, loc)
	end, _ = time.ParseInLocation("2006-01-02", r.EndDate, loc)
	return start, end
}

type CheckpointResponse struct {
	Label    string  `json:"label"`
	Role     string  `json:"role"`
	Expected string  `json:"expected"`
	Actual   *string `json:"actual"`
}

type AttendanceRecord struct {
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Date         string               `json:"date"`
	EntryTime    *string              `json:"entry_time"`
	ExitTime     *string              `json:"exit_time"`
	Status       DayStatus            `json:"status"`
	LateMinutes  int                  `json:"late_minutes"`
	HoursWorked  float64              `json:"hours_worked"`
	Pattern      string               `json:"schedule_pattern"`
	Checkpoints  []CheckpointResponse `json:"checkpoints"`
}

type AttendanceReport struct {
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	GeneratedAt string             `json:"generated_at"`
	Records     []AttendanceRecord `json:"records"`
	Summary     Summary            `json:"summary"`
}
