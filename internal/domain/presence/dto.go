package presence

import "github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"

type PresenceEntry struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Since      *string `json:"since"`
}

type PresenceResponse struct {
	Inside     []PresenceEntry `json:"inside"`
	Outside    []PresenceEntry `json:"outside"`
	Connected  bool            `json:"connected"`
	Monitoring bool            `json:"monitoring"`

	TotalEventsToday     int                        `json:"total_events_today"`
	UniqueEmployeesToday int                        `json:"unique_employees_today"`
	Recent               []attendance.EventResponse `json:"recent"`
	GeneratedAt          string                     `json:"generated_at"`
}
