package notification

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// Live event names.
const (
	EventAttendanceRecord = "attendance_record"
	EventAccessDenied     = "access_denied"
)

// Notification is the ephemeral projection of an accepted event pushed to
// live subscribers. It is never persisted.
type Notification struct {
	EmployeeID   string
	Name         string
	Kind         attendance.Kind
	Timestamp    time.Time
	VerifyMethod string
}

// AccessDenied is a rejected reading reported by the device.
type AccessDenied struct {
	EmployeeID   string
	Name         string
	Timestamp    time.Time
	VerifyMethod string
	ReaderNo     int
}
