package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
)

// MemStore is an in-memory repository.Store with the same unique
// constraints as the real backends. Safe for concurrent use.
type MemStore struct {
	mu         sync.Mutex
	seq        int
	employees  map[string]memEmployee
	attendance map[string]memAttendance
	err        error
}

type memEmployee struct {
	seq int
	emp model.Employee
}

type memAttendance struct {
	seq int
	att model.Attendance
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		employees:  make(map[string]memEmployee),
		attendance: make(map[string]memAttendance),
	}
}

// FailWith makes every subsequent operation return err. Pass nil to recover.
func (s *MemStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Employees returns the employee collection handle.
func (s *MemStore) Employees() repository.EmployeeCollection { return memEmployees{s} }

// Attendance returns the attendance collection handle.
func (s *MemStore) Attendance() repository.AttendanceCollection { return memAttendanceColl{s} }

// Ping reports the injected failure, if any.
func (s *MemStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close is a no-op.
func (s *MemStore) Close(_ context.Context) error { return nil }

// AttendanceCount returns the number of stored marks regardless of filter.
func (s *MemStore) AttendanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendance)
}

func (s *MemStore) nextSeq() int {
	s.seq++
	return s.seq
}

type memEmployees struct{ s *MemStore }

func (c memEmployees) Insert(_ context.Context, emp *model.Employee) (string, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}

	for _, e := range s.employees {
		if e.emp.EmployeeID == emp.EmployeeID {
			return "", &repository.DuplicateKeyError{Field: repository.FieldEmployeeID, Err: errors.New("employee_id taken")}
		}
		if e.emp.Email == emp.Email {
			return "", &repository.DuplicateKeyError{Field: repository.FieldEmail, Err: errors.New("email taken")}
		}
	}

	stored := *emp
	stored.ID = model.NewID()
	s.employees[stored.ID] = memEmployee{seq: s.nextSeq(), emp: stored}
	return stored.ID, nil
}

func (c memEmployees) Find(_ context.Context, srt repository.Sort) ([]*model.Employee, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if srt.Field != repository.SortCreatedAt {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidSort, srt.Field)
	}

	rows := make([]memEmployee, 0, len(s.employees))
	for _, e := range s.employees {
		rows = append(rows, e)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.emp.CreatedAt.Equal(b.emp.CreatedAt) {
			if srt.Descending {
				return a.emp.CreatedAt.After(b.emp.CreatedAt)
			}
			return a.emp.CreatedAt.Before(b.emp.CreatedAt)
		}
		if srt.Descending {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	out := make([]*model.Employee, 0, len(rows))
	for _, r := range rows {
		emp := r.emp
		out = append(out, &emp)
	}
	return out, nil
}

func (c memEmployees) FindByID(_ context.Context, id string) (*model.Employee, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	e, ok := s.employees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	emp := e.emp
	return &emp, nil
}

func (c memEmployees) Count(_ context.Context) (int64, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.employees)), nil
}

func (c memEmployees) DeleteByID(_ context.Context, id string) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	if _, ok := s.employees[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

type memAttendanceColl struct{ s *MemStore }

func matches(a model.Attendance, f repository.AttendanceFilter) bool {
	if f.EmployeeID != "" && a.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func (c memAttendanceColl) Insert(_ context.Context, a *model.Attendance) (string, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}

	for _, r := range s.attendance {
		if r.att.EmployeeID == a.EmployeeID && r.att.Date == a.Date {
			return "", &repository.DuplicateKeyError{Field: repository.FieldDate, Err: errors.New("attendance day taken")}
		}
	}

	stored := *a
	stored.ID = model.NewID()
	s.attendance[stored.ID] = memAttendance{seq: s.nextSeq(), att: stored}
	return stored.ID, nil
}

func (c memAttendanceColl) Find(_ context.Context, f repository.AttendanceFilter, srt repository.Sort) ([]*model.Attendance, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var key func(model.Attendance) string
	switch srt.Field {
	case repository.SortDate:
		key = func(a model.Attendance) string { return a.Date }
	case repository.SortCreatedAt:
		key = func(a model.Attendance) string { return a.CreatedAt.Format("2006-01-02T15:04:05.000000000") }
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidSort, srt.Field)
	}

	rows := make([]memAttendance, 0)
	for _, r := range s.attendance {
		if matches(r.att, f) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ki, kj := key(rows[i].att), key(rows[j].att)
		if ki != kj {
			if srt.Descending {
				return ki > kj
			}
			return ki < kj
		}
		if srt.Descending {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].seq < rows[j].seq
	})

	out := make([]*model.Attendance, 0, len(rows))
	for _, r := range rows {
		a := r.att
		out = append(out, &a)
	}
	return out, nil
}

func (c memAttendanceColl) Count(_ context.Context, f repository.AttendanceFilter) (int64, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}

	var n int64
	for _, r := range s.attendance {
		if matches(r.att, f) {
			n++
		}
	}
	return n, nil
}

func (c memAttendanceColl) DeleteMany(_ context.Context, f repository.AttendanceFilter) (int64, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}

	var n int64
	for id, r := range s.attendance {
		if matches(r.att, f) {
			delete(s.attendance, id)
			n++
		}
	}
	return n, nil
}

func (c memAttendanceColl) PresentCounts(_ context.Context) ([]model.PresenceCount, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	totals := make(map[string]int64)
	for _, r := range s.attendance {
		if r.att.Status == model.StatusPresent {
			totals[r.att.EmployeeID]++
		}
	}

	out := make([]model.PresenceCount, 0, len(totals))
	for id, n := range totals {
		out = append(out, model.PresenceCount{EmployeeID: id, PresentDays: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PresentDays != out[j].PresentDays {
			return out[i].PresentDays > out[j].PresentDays
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}
