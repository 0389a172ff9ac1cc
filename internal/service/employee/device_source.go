package employee

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/hikvision"
)

// DeviceUserSource adapts the ISAPI client to employee.UserSource.
type DeviceUserSource struct {
	client *hikvision.Client
}

func NewDeviceUserSource(client *hikvision.Client) *DeviceUserSource {
	return &DeviceUserSource{client: client}
}

func (s *DeviceUserSource) SearchUsers(ctx context.Context) ([]employee.DeviceUser, error) {
	users, err := s.client.SearchUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]employee.DeviceUser, 0, len(users))
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = "Employee " + u.EmployeeNo
		}
		out = append(out, employee.DeviceUser{EmployeeID: u.EmployeeNo, Name: name})
	}
	return out, nil
}
