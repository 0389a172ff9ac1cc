package attendance

import "errors"

// Attendance domain errors
var (
	// Ingestion errors
	ErrStorageUnavailable = errors.New("event storage unavailable")
	ErrDuplicateEvent     = errors.New("duplicate clock event for employee")
)
