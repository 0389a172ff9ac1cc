package employee

import "context"

type EmployeeRepository interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	// Upsert inserts the employee or updates name and sync flag of an existing one.
	// It reports whether a new record was created.
	Upsert(ctx context.Context, e Employee) (created bool, err error)
}

// UserSource lists the users enrolled on a reader.
type UserSource interface {
	SearchUsers(ctx context.Context) ([]DeviceUser, error)
}
