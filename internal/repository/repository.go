// Package repository defines the document store contract shared by the
// MongoDB and PostgreSQL backends.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrmslite/hrmslite/internal/model"
)

// Common errors for store operations.
var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidSort = errors.New("unsupported sort field")
)

// Unique fields reported by DuplicateKeyError.
const (
	FieldEmployeeID = "employee_id"
	FieldEmail      = "email"
	FieldDate       = "date"
)

// DuplicateKeyError reports a unique index collision on insert.
// Field is empty when the colliding index could not be identified.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate key: %v", e.Err)
	}
	return fmt.Sprintf("duplicate key on %s: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// IsDuplicateKey reports whether err is a unique index collision and returns
// the colliding field.
func IsDuplicateKey(err error) (string, bool) {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}

// Sort fields accepted by Find operations.
const (
	SortCreatedAt = "created_at"
	SortDate      = "date"
)

// Sort orders a Find result by a single field.
type Sort struct {
	Field      string
	Descending bool
}

// AttendanceFilter is an equality filter; empty fields are ignored.
type AttendanceFilter struct {
	EmployeeID string
	Date       string
	Status     model.AttendanceStatus
}

// EmployeeCollection is the employee half of the store gateway.
type EmployeeCollection interface {
	Insert(ctx context.Context, emp *model.Employee) (string, error)
	Find(ctx context.Context, sort Sort) ([]*model.Employee, error)
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id string) error
}

// AttendanceCollection is the attendance half of the store gateway.
type AttendanceCollection interface {
	Insert(ctx context.Context, a *model.Attendance) (string, error)
	Find(ctx context.Context, filter AttendanceFilter, sort Sort) ([]*model.Attendance, error)
	Count(ctx context.Context, filter AttendanceFilter) (int64, error)
	DeleteMany(ctx context.Context, filter AttendanceFilter) (int64, error)
	// PresentCounts groups Present marks by employee, highest count first.
	PresentCounts(ctx context.Context) ([]model.PresenceCount, error)
}

// Store is a connected document store.
type Store interface {
	Employees() EmployeeCollection
	Attendance() AttendanceCollection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
