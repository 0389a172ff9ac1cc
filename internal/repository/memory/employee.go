package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
)

type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository(seed ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee)}
	for _, e := range seed {
		r.employees[e.EmployeeID] = e
	}
	return r
}

func (r *EmployeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employees := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
	return employees, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) Upsert(ctx context.Context, e employee.Employee) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.employees[e.EmployeeID]
	if !ok {
		r.employees[e.EmployeeID] = e
		return true, nil
	}
	existing.Name = e.Name
	existing.SyncedToDevice = e.SyncedToDevice
	existing.UpdatedAt = time.Now()
	r.employees[e.EmployeeID] = existing
	return false, nil
}
