package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrmslite/hrmslite/internal/events"
	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
	"github.com/hrmslite/hrmslite/internal/validation"
)

// EmployeeService handles employee business logic.
type EmployeeService struct {
	store repository.Store
	opts  Options
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(store repository.Store, opts Options) *EmployeeService {
	return &EmployeeService{store: store, opts: opts.withDefaults()}
}

// List returns every employee, newest first.
func (s *EmployeeService) List(ctx context.Context) ([]*model.Employee, error) {
	employees, err := s.store.Employees().Find(ctx, repository.Sort{Field: repository.SortCreatedAt, Descending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Create validates the payload and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, p validation.Payload) (*model.Employee, error) {
	in, errs := validation.ValidateEmployee(p)
	if !errs.Empty() {
		return nil, ValidationError(errs)
	}

	now := s.opts.timestamp()
	emp := &model.Employee{
		EmployeeID: in.EmployeeID,
		FullName:   in.FullName,
		Email:      in.Email,
		Department: in.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	id, err := s.store.Employees().Insert(ctx, emp)
	if err != nil {
		if f, ok := repository.IsDuplicateKey(err); ok {
			return nil, duplicateEmployee(f)
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	emp.ID = id

	s.opts.Metrics.IncEmployeeCreated()
	s.opts.invalidateDashboard(ctx)
	s.opts.publish(events.EmployeeCreated(emp))
	s.opts.Logger.Info("employee_created",
		"id", emp.ID,
		"employee_id", emp.EmployeeID,
	)

	return emp, nil
}

func duplicateEmployee(f string) *Error {
	switch f {
	case repository.FieldEmployeeID:
		return ValidationError(field("employee_id", MsgEmployeeIDTaken))
	case repository.FieldEmail:
		return ValidationError(field("email", MsgEmailTaken))
	default:
		return ConflictError(MsgDuplicateEntry, nil)
	}
}

// Get returns one employee by store id.
func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return nil, MalformedIDError()
	}
	return s.find(ctx, oid)
}

func (s *EmployeeService) find(ctx context.Context, oid string) (*model.Employee, error) {
	emp, err := s.store.Employees().FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError(MsgEmployeeNotFound, nil)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// Delete removes an employee and every attendance mark referencing it.
// Attendance goes first; the two steps are not atomic.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	oid, err := model.ParseID(id)
	if err != nil {
		return MalformedIDError()
	}

	emp, err := s.find(ctx, oid)
	if err != nil {
		return err
	}

	removed, err := s.store.Attendance().DeleteMany(ctx, repository.AttendanceFilter{EmployeeID: oid})
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	if err := s.store.Employees().DeleteByID(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError(MsgEmployeeNotFound, nil)
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	s.opts.Metrics.IncEmployeeDeleted()
	s.opts.Metrics.AddAttendanceCascaded(removed)
	s.opts.invalidateDashboard(ctx)
	s.opts.publish(events.EmployeeDeleted(emp, removed, s.opts.timestamp()))
	s.opts.Logger.Info("employee_deleted",
		"id", oid,
		"employee_id", emp.EmployeeID,
		"attendance_removed", removed,
	)

	return nil
}
