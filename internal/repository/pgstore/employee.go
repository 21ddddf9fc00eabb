package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
)

const employeeColumns = `id, employee_id, full_name, email, department, created_at, updated_at`

var employeeSortColumns = map[string]string{
	repository.SortCreatedAt: "created_at",
}

type employeeTable struct {
	pool *pgxpool.Pool
}

// Insert stores a new employee under a freshly generated ObjectID.
func (t *employeeTable) Insert(ctx context.Context, emp *model.Employee) (string, error) {
	id := model.NewID()
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.pool.Exec(ctx, query,
		id,
		emp.EmployeeID,
		emp.FullName,
		emp.Email,
		emp.Department,
		emp.CreatedAt,
		emp.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert employee: %w", translateWriteError(err))
	}
	return id, nil
}

// Find returns all employees in the requested order.
func (t *employeeTable) Find(ctx context.Context, sort repository.Sort) ([]*model.Employee, error) {
	order, err := orderBy(sort, employeeSortColumns)
	if err != nil {
		return nil, err
	}

	rows, err := t.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees`+order)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]*model.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	return employees, nil
}

// FindByID returns the employee with the given id or repository.ErrNotFound.
func (t *employeeTable) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	row := t.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)

	emp, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// Count returns the number of employees.
func (t *employeeTable) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

// DeleteByID removes one employee. It does not touch attendance.
func (t *employeeTable) DeleteByID(ctx context.Context, id string) error {
	tag, err := t.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*model.Employee, error) {
	var emp model.Employee
	err := row.Scan(
		&emp.ID,
		&emp.EmployeeID,
		&emp.FullName,
		&emp.Email,
		&emp.Department,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}
