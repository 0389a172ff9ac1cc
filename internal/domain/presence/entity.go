package presence

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type Status string

const (
	StatusInside  Status = "inside"
	StatusOutside Status = "outside"
	StatusUnknown Status = "unknown"
)

// PresenceState is the last observed presence of one employee. Values are
// never modified after publication; the ledger replaces them whole.
type PresenceState struct {
	Status        Status
	LastEventTime time.Time
	LastEventKind attendance.Kind
}

// StatusFor maps an event kind to the presence it implies.
func StatusFor(kind attendance.Kind) Status {
	if kind == attendance.KindEntrada {
		return StatusInside
	}
	return StatusOutside
}
