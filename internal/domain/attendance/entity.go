package attendance

import (
	"sort"
	"time"
)

// Kind is the direction of a clock event.
type Kind string

const (
	KindEntrada Kind = "entrada"
	KindSalida  Kind = "salida"
)

var KindValues = []string{
	string(KindEntrada),
	string(KindSalida),
}

// Opposite returns the other kind.
func (k Kind) Opposite() Kind {
	if k == KindEntrada {
		return KindSalida
	}
	return KindEntrada
}

// Verification methods reported by the reader.
const (
	VerifyFingerprint = "fingerprint"
	VerifyCard        = "card"
	VerifyFace        = "face"
	VerifyUnknown     = "unknown"
)

// ClockEvent is one accepted entrance or exit reading. It is immutable once
// accepted; SequenceNo is assigned at normalization and never reused.
type ClockEvent struct {
	SequenceNo   uint64
	EmployeeID   string
	Kind         Kind
	Timestamp    time.Time
	VerifyMethod string
	ReaderNo     int
	RecordedAt   time.Time
}

// Before orders events by timestamp, breaking ties by sequence number.
func (e ClockEvent) Before(other ClockEvent) bool {
	if e.Timestamp.Equal(other.Timestamp) {
		return e.SequenceNo < other.SequenceNo
	}
	return e.Timestamp.Before(other.Timestamp)
}

// SortEvents sorts events in place by timestamp, then sequence number.
func SortEvents(events []ClockEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
}
