package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hrmslite/hrmslite/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// DropHRTables removes the employees and attendance tables so a test can
// start from an empty schema.
func DropHRTables(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS attendance, employees`); err != nil {
		return fmt.Errorf("drop hr tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestEmployee creates an employee with unique employee_id and email.
func NewTestEmployee(t testing.TB, prefix string) *model.Employee {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	code := UniqueCode(prefix)
	return &model.Employee{
		EmployeeID: code,
		FullName:   "Test " + prefix,
		Email:      code + "@example.com",
		Department: "Engineering",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTestAttendance creates an attendance mark for employeeID on date.
func NewTestAttendance(t testing.TB, employeeID, date string, status model.AttendanceStatus) *model.Attendance {
	t.Helper()
	return &model.Attendance{
		EmployeeID: employeeID,
		Date:       date,
		Status:     status,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

// UniqueCode generates a unique alphanumeric code for tests.
func UniqueCode(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
