package attendance

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// Normalizer validates raw events and assigns process-wide sequence numbers.
// It is safe for concurrent use.
type Normalizer struct {
	seq       atomic.Uint64
	clockSkew time.Duration
	loc       *time.Location
	now       func() time.Time
}

func NewNormalizer(clockSkew time.Duration, loc *time.Location) *Normalizer {
	return &Normalizer{
		clockSkew: clockSkew,
		loc:       loc,
		now:       time.Now,
	}
}

// Seed continues numbering after last, typically the highest stored sequence.
func (n *Normalizer) Seed(last uint64) {
	for {
		current := n.seq.Load()
		if current >= last || n.seq.CompareAndSwap(current, last) {
			return
		}
	}
}

// Normalize returns a typed event or validator.ValidationErrors naming every
// offending field. The sequence counter only advances on success.
func (n *Normalizer) Normalize(req attendance.IngestRequest) (attendance.ClockEvent, error) {
	var errs validator.ValidationErrors

	employeeID := strings.TrimSpace(req.EmployeeID)
	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidEmployeeID(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id has an invalid format",
		})
	}

	kind := attendance.Kind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if !validator.IsInSlice(string(kind), attendance.KindValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("kind must be one of: %s", strings.Join(attendance.KindValues, ", ")),
		})
	}

	var timestamp time.Time
	if validator.IsEmpty(req.Timestamp) {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp is required",
		})
	} else if ts, ok := validator.ParseDateTime(strings.TrimSpace(req.Timestamp), n.loc); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be an ISO8601 date-time",
		})
	} else if ts.After(n.now().Add(n.clockSkew)) {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: fmt.Sprintf("timestamp is more than %s in the future", n.clockSkew),
		})
	} else {
		timestamp = ts
	}

	if len(errs) > 0 {
		return attendance.ClockEvent{}, errs
	}

	verifyMethod := strings.ToLower(strings.TrimSpace(req.VerifyMethod))
	if verifyMethod == "" {
		verifyMethod = attendance.VerifyUnknown
	}

	return attendance.ClockEvent{
		SequenceNo:   n.seq.Add(1),
		EmployeeID:   employeeID,
		Kind:         kind,
		Timestamp:    timestamp,
		VerifyMethod: verifyMethod,
		ReaderNo:     req.ReaderNo,
		RecordedAt:   n.now(),
	}, nil
}
