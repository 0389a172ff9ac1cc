package employee

import "time"

type EmployeeResponse struct {
	EmployeeID      string  `json:"employee_id"`
	Name            string  `json:"name"`
	Department      *string `json:"department,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Active          bool    `json:"active"`
	SchedulePattern string  `json:"schedule_pattern"`
	SyncedToDevice  bool    `json:"synced_to_device"`
	UpdatedAt       string  `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:      e.EmployeeID,
		Name:            e.Name,
		Department:      e.Department,
		Phone:           e.Phone,
		Email:           e.Email,
		Active:          e.Active,
		SchedulePattern: string(e.SchedulePattern),
		SyncedToDevice:  e.SyncedToDevice,
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
}

// SyncResult reports the outcome of pulling enrolled users from the reader.
type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type RefreshResult struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}
