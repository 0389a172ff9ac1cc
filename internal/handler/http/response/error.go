package response

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// StorageRetryAfter is advertised when event storage is down.
const StorageRetryAfter = 5 * time.Second

// RejectionFor maps an engine error to the rejection sent to the caller.
func RejectionFor(err error) Rejection {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Rejection{
			Reason:  ReasonValidation,
			Message: "Validation failed",
			Details: validationErrs.ToMap(),
		}
	}

	switch {
	// Ingestion
	case errors.Is(err, attendance.ErrDuplicateEvent):
		return Rejection{Reason: ReasonDuplicateEvent, Message: "Duplicate clock event"}
	case errors.Is(err, attendance.ErrStorageUnavailable):
		return Rejection{
			Reason:     ReasonStorage,
			Message:    "Event storage unavailable, the event was not recorded",
			RetryAfter: StorageRetryAfter,
		}

	// Report
	case errors.Is(err, report.ErrInvalidRange):
		return Rejection{
			Reason:  ReasonInvalidRange,
			Message: err.Error(),
			Details: map[string]string{"start_date": err.Error()},
		}
	case errors.Is(err, report.ErrRangeTooWide):
		return Rejection{Reason: ReasonRangeTooWide, Message: err.Error()}

	// Employee directory
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return Rejection{Reason: ReasonEmployeeNotFound, Message: "Employee not found"}
	case errors.Is(err, employee.ErrNoUserSource):
		return Rejection{Reason: ReasonNoDevice, Message: "No device configured"}
	}

	return Rejection{Reason: ReasonInternal, Message: "An unexpected error occurred"}
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	rej := RejectionFor(err)
	if rej.Reason == ReasonInternal {
		slog.Error("Unhandled error", "error", err)
	}
	Reject(w, rej)
}
