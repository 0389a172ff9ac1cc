package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// Tracker is notified of every employee id seen on refresh.
type Tracker interface {
	Track(employeeIDs ...string)
}

// DirectoryServiceImpl caches the employee directory in memory. The cache is
// loaded lazily and re-pulled after Invalidate.
type DirectoryServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	source       employee.UserSource
	tracker      Tracker

	mu      sync.RWMutex
	loaded  bool
	byID    map[string]employee.Employee
	ordered []employee.Employee
}

func NewDirectoryService(employeeRepo employee.EmployeeRepository, source employee.UserSource, tracker Tracker) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{
		employeeRepo: employeeRepo,
		source:       source,
		tracker:      tracker,
		byID:         make(map[string]employee.Employee),
	}
}

func (s *DirectoryServiceImpl) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	_, err := s.Refresh(ctx)
	return err
}

// Lookup returns the cached employee. A cache miss is checked against storage
// once so employees added upstream resolve without a full refresh.
func (s *DirectoryServiceImpl) Lookup(ctx context.Context, employeeID string) (employee.Employee, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return employee.Employee{}, err
	}

	s.mu.RLock()
	emp, ok := s.byID[employeeID]
	s.mu.RUnlock()
	if ok {
		return emp, nil
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	s.put(emp)
	return emp, nil
}

func (s *DirectoryServiceImpl) put(emp employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[emp.EmployeeID]; !exists {
		s.ordered = append(s.ordered, emp)
		sortEmployees(s.ordered)
	} else {
		for i := range s.ordered {
			if s.ordered[i].EmployeeID == emp.EmployeeID {
				s.ordered[i] = emp
			}
		}
	}
	s.byID[emp.EmployeeID] = emp
	if s.tracker != nil {
		s.tracker.Track(emp.EmployeeID)
	}
}

// All returns every employee ordered by employee id.
func (s *DirectoryServiceImpl) All(ctx context.Context) ([]employee.Employee, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]employee.Employee, len(s.ordered))
	copy(out, s.ordered)
	return out, nil
}

// Active returns the active employees ordered by employee id.
func (s *DirectoryServiceImpl) Active(ctx context.Context) ([]employee.Employee, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]employee.Employee, 0, len(all))
	for _, emp := range all {
		if emp.Active {
			active = append(active, emp)
		}
	}
	return active, nil
}

// Invalidate drops the cache; the next read re-pulls from storage.
func (s *DirectoryServiceImpl) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

// Refresh reloads the whole directory from storage.
func (s *DirectoryServiceImpl) Refresh(ctx context.Context) (employee.RefreshResult, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return employee.RefreshResult{}, fmt.Errorf("failed to list employees: %w", err)
	}
	sortEmployees(employees)

	byID := make(map[string]employee.Employee, len(employees))
	result := employee.RefreshResult{Total: len(employees)}
	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		byID[emp.EmployeeID] = emp
		ids = append(ids, emp.EmployeeID)
		if emp.Active {
			result.Active++
		}
	}

	s.mu.Lock()
	s.byID = byID
	s.ordered = employees
	s.loaded = true
	s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.Track(ids...)
	}

	slog.Debug("Employee directory refreshed", "total", result.Total, "active", result.Active)
	return result, nil
}

// SyncFromDevice imports the users enrolled on the reader. New users are
// created active with the normal pattern; existing users get their name updated.
func (s *DirectoryServiceImpl) SyncFromDevice(ctx context.Context) (employee.SyncResult, error) {
	if s.source == nil {
		return employee.SyncResult{}, employee.ErrNoUserSource
	}

	users, err := s.source.SearchUsers(ctx)
	if err != nil {
		return employee.SyncResult{}, fmt.Errorf("failed to read device users: %w", err)
	}

	result := employee.SyncResult{Fetched: len(users)}
	now := time.Now()
	for _, user := range users {
		if user.EmployeeID == "" {
			continue
		}
		created, err := s.employeeRepo.Upsert(ctx, employee.Employee{
			EmployeeID:      user.EmployeeID,
			Name:            user.Name,
			Active:          true,
			SchedulePattern: schedule.PatternNormal,
			SyncedToDevice:  true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return result, fmt.Errorf("failed to upsert employee %s: %w", user.EmployeeID, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.Invalidate()
	if _, err := s.Refresh(ctx); err != nil {
		return result, err
	}

	slog.Info("Employee directory synced from device", "fetched", result.Fetched, "created", result.Created, "updated", result.Updated)
	return result, nil
}

// RefreshJob is the cron entry point for periodic directory refresh.
func (s *DirectoryServiceImpl) RefreshJob(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	return err
}

func sortEmployees(employees []employee.Employee) {
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
}
