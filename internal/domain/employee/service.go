package employee

import "context"

// Directory is the read side of the employee directory used by the engine.
type Directory interface {
	// Lookup returns the employee or ErrEmployeeNotFound.
	Lookup(ctx context.Context, employeeID string) (Employee, error)
	// Active returns all active employees ordered by employee id.
	Active(ctx context.Context) ([]Employee, error)
	All(ctx context.Context) ([]Employee, error)
	// Refresh reloads the cached directory from storage.
	Refresh(ctx context.Context) (RefreshResult, error)
	// SyncFromDevice imports enrolled reader users and refreshes the cache.
	SyncFromDevice(ctx context.Context) (SyncResult, error)
}
