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

// AttendanceService handles attendance marks and per-employee history.
type AttendanceService struct {
	store     repository.Store
	employees *EmployeeService
	opts      Options
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(store repository.Store, opts Options) *AttendanceService {
	opts = opts.withDefaults()
	return &AttendanceService{
		store:     store,
		employees: NewEmployeeService(store, opts),
		opts:      opts,
	}
}

// List returns attendance newest date first, optionally for a single date.
// date is matched verbatim.
func (s *AttendanceService) List(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	marks, err := s.store.Attendance().Find(ctx,
		repository.AttendanceFilter{Date: date},
		repository.Sort{Field: repository.SortDate, Descending: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	byID, err := employeeIndex(ctx, s.store)
	if err != nil {
		return nil, err
	}

	records := make([]model.AttendanceRecord, 0, len(marks))
	for _, m := range marks {
		records = append(records, m.Enrich(byID[m.EmployeeID]))
	}
	return records, nil
}

// Mark validates the payload and records one attendance mark.
func (s *AttendanceService) Mark(ctx context.Context, p validation.Payload) (model.AttendanceRecord, error) {
	in, errs := validation.ValidateAttendance(p, s.opts.today())
	if !errs.Empty() {
		return model.AttendanceRecord{}, ValidationError(errs)
	}

	oid, err := model.ParseID(in.EmployeeID)
	if err != nil {
		return model.AttendanceRecord{}, MalformedIDError()
	}

	emp, err := s.employees.find(ctx, oid)
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) && svcErr.Kind == KindNotFound {
			return model.AttendanceRecord{}, NotFoundError(MsgEmployeeNotFound, field("employee_id", MsgEmployeeMissing))
		}
		return model.AttendanceRecord{}, err
	}

	mark := &model.Attendance{
		EmployeeID: oid,
		Date:       in.Date,
		Status:     in.Status,
		CreatedAt:  s.opts.timestamp(),
	}

	id, err := s.store.Attendance().Insert(ctx, mark)
	if err != nil {
		if _, ok := repository.IsDuplicateKey(err); ok {
			return model.AttendanceRecord{}, ConflictError(MsgAttendanceExists, field("date", MsgAttendanceDayTaken))
		}
		return model.AttendanceRecord{}, fmt.Errorf("failed to mark attendance: %w", err)
	}
	mark.ID = id
	rec := mark.Enrich(emp)

	s.opts.Metrics.IncAttendanceMarked()
	s.opts.invalidateDashboard(ctx)
	s.opts.publish(events.AttendanceMarked(rec))
	s.opts.Logger.Info("attendance_marked",
		"id", rec.ID,
		"employee_id", oid,
		"date", rec.Date,
		"status", rec.Status,
	)

	return rec, nil
}

// History returns one employee's marks with totals.
func (s *AttendanceService) History(ctx context.Context, id string) (*model.AttendanceHistory, error) {
	emp, err := s.employees.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	marks, err := s.store.Attendance().Find(ctx,
		repository.AttendanceFilter{EmployeeID: emp.ID},
		repository.Sort{Field: repository.SortDate, Descending: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance history: %w", err)
	}

	records := make([]model.AttendanceRecord, 0, len(marks))
	for _, m := range marks {
		records = append(records, m.Enrich(emp))
	}

	return &model.AttendanceHistory{
		Employee: emp.Summary(),
		Stats:    model.ComputeStats(marks),
		Records:  records,
	}, nil
}

// employeeIndex loads every employee keyed by store id.
func employeeIndex(ctx context.Context, store repository.Store) (map[string]*model.Employee, error) {
	employees, err := store.Employees().Find(ctx, repository.Sort{Field: repository.SortCreatedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	byID := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}
	return byID, nil
}
