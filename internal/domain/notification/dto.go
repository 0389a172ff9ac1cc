package notification

import "time"

type Payload struct {
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	EventType    string `json:"event_type"`
	VerifyMethod string `json:"verify_method"`
	Timestamp    string `json:"timestamp"`
}

func (n Notification) Payload() Payload {
	return Payload{
		EmployeeID:   n.EmployeeID,
		Name:         n.Name,
		EventType:    string(n.Kind),
		VerifyMethod: n.VerifyMethod,
		Timestamp:    n.Timestamp.Format(time.RFC3339),
	}
}

type AccessDeniedPayload struct {
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	VerifyMethod string `json:"verify_method"`
	ReaderNo     int    `json:"reader_no"`
	Timestamp    string `json:"timestamp"`
}

func (d AccessDenied) Payload() AccessDeniedPayload {
	return AccessDeniedPayload{
		EmployeeID:   d.EmployeeID,
		Name:         d.Name,
		VerifyMethod: d.VerifyMethod,
		ReaderNo:     d.ReaderNo,
		Timestamp:    d.Timestamp.Format(time.RFC3339),
	}
}

// Stats describes dispatcher fan-out.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
}
