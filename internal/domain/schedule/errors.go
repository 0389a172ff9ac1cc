package schedule

import "errors"

var (
	ErrPatternNotFound     = errors.New("schedule pattern not found")
	ErrPatternNameRequired = errors.New("schedule pattern name is required")
	ErrNoCheckpoints       = errors.New("schedule pattern has no checkpoints")
	ErrRolesNotAlternating = errors.New("checkpoint roles must alternate starting with entry")
	ErrTimesNotIncreasing  = errors.New("checkpoint times must be strictly increasing")
	ErrNegativeTolerance   = errors.New("checkpoint tolerance must not be negative")
	ErrInvalidTimeOfDay    = errors.New("invalid time of day, use HH:MM")
)
