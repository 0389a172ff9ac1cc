package employee

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// Employee is a directory record. The engine reads the directory; it is
// maintained by sync from the reader or by an external system.
type Employee struct {
	EmployeeID      string
	Name            string
	Department      *string
	Phone           *string
	Email           *string
	Active          bool
	SchedulePattern schedule.PatternName
	SyncedToDevice  bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DeviceUser is a person enrolled on the access-control reader.
type DeviceUser struct {
	EmployeeID string
	Name       string
}
