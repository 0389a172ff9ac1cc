package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `employee_id, name, department, phone, email, active, schedule_pattern, synced_to_device, created_at, updated_at`

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	emp, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return emp, nil
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Upsert(ctx context.Context, e employee.Employee) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (employee_id, name, department, phone, email, active, schedule_pattern, synced_to_device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id) DO UPDATE
		SET name = EXCLUDED.name,
			synced_to_device = EXCLUDED.synced_to_device,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var created bool
	err := q.QueryRow(ctx, query,
		e.EmployeeID,
		e.Name,
		e.Department,
		e.Phone,
		e.Email,
		e.Active,
		string(e.SchedulePattern),
		e.SyncedToDevice,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert employee %s: %w", e.EmployeeID, err)
	}
	return created, nil
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		emp     employee.Employee
		pattern string
	)
	err := row.Scan(
		&emp.EmployeeID, &emp.Name, &emp.Department, &emp.Phone, &emp.Email,
		&emp.Active, &pattern, &emp.SyncedToDevice, &emp.CreatedAt, &emp.UpdatedAt,
	)
	emp.SchedulePattern = schedule.PatternName(pattern)
	return emp, err
}
