package attendance

import "time"

// IngestRequest is a raw clock event as received from a reader or bridge.
type IngestRequest struct {
	EmployeeID   string `json:"employee_id"`
	Kind         string `json:"kind"`
	Timestamp    string `json:"timestamp"`
	VerifyMethod string `json:"verify_method"`
	ReaderNo     int    `json:"reader_no,omitempty"`
}

type IngestResponse struct {
	SequenceNo   uint64 `json:"sequence_no"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Kind         Kind   `json:"kind"`
	Timestamp    string `json:"timestamp"`
	VerifyMethod string `json:"verify_method"`

	// Resolved is false when the employee is not in the directory yet; the
	// event is stored but does not affect presence.
	Resolved bool   `json:"resolved"`
	Presence string `json:"presence,omitempty"`
}

type EventResponse struct {
	SequenceNo   uint64 `json:"sequence_no"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Kind         Kind   `json:"kind"`
	Timestamp    string `json:"timestamp"`
	VerifyMethod string `json:"verify_method"`
}

// NewEventResponse formats e for API output in loc.
func NewEventResponse(e ClockEvent, name string, loc *time.Location) EventResponse {
	return EventResponse{
		SequenceNo:   e.SequenceNo,
		EmployeeID:   e.EmployeeID,
		EmployeeName: name,
		Kind:         e.Kind,
		Timestamp:    e.Timestamp.In(loc).Format(time.RFC3339),
		VerifyMethod: e.VerifyMethod,
	}
}
