// Package pgstore implements the document store on PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrmslite/hrmslite/internal/repository"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Unique index names created by EnsureSchema.
const (
	indexEmployeeID   = "employees_employee_id_key"
	indexEmail        = "employees_email_key"
	indexEmployeeDate = "attendance_employee_date_key"
)

var indexFields = map[string]string{
	indexEmployeeID:   repository.FieldEmployeeID,
	indexEmail:        repository.FieldEmail,
	indexEmployeeDate: repository.FieldDate,
}

// schema is idempotent; EnsureSchema runs it on every start.
// attendance.employee_id is deliberately not a foreign key.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id          CHAR(24) PRIMARY KEY,
		employee_id TEXT NOT NULL,
		full_name   TEXT NOT NULL,
		email       TEXT NOT NULL,
		department  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + indexEmployeeID + ` ON employees (employee_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + indexEmail + ` ON employees (email)`,
	`CREATE INDEX IF NOT EXISTS employees_created_at_idx ON employees (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id              CHAR(24) PRIMARY KEY,
		employee_id     TEXT NOT NULL,
		attendance_date TEXT NOT NULL,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + indexEmployeeDate + ` ON attendance (employee_id, attendance_date)`,
	`CREATE INDEX IF NOT EXISTS attendance_date_idx ON attendance (attendance_date)`,
}

// Store provides PostgreSQL access behind the repository contract.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store with a connection pool and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates tables and unique indexes if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Employees returns the employee collection handle.
func (s *Store) Employees() repository.EmployeeCollection {
	return &employeeTable{pool: s.pool}
}

// Attendance returns the attendance collection handle.
func (s *Store) Attendance() repository.AttendanceCollection {
	return &attendanceTable{pool: s.pool}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// translateWriteError maps unique violations to repository.DuplicateKeyError.
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	return &repository.DuplicateKeyError{Field: indexFields[pgErr.ConstraintName], Err: err}
}

// orderBy maps a sort to a whitelisted column.
func orderBy(sort repository.Sort, columns map[string]string) (string, error) {
	col, ok := columns[sort.Field]
	if !ok {
		return "", fmt.Errorf("%w: %q", repository.ErrInvalidSort, sort.Field)
	}
	dir := "ASC"
	if sort.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir), nil
}
