// Package events publishes HR roster changes to a Redis stream.
package events

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hrmslite/hrmslite/internal/model"
)

// Type names an HR event.
type Type string

const (
	TypeEmployeeCreated  Type = "employee.created"
	TypeEmployeeDeleted  Type = "employee.deleted"
	TypeAttendanceMarked Type = "attendance.marked"
)

// Event is the stream payload. EmployeeID is the store id of the employee;
// EmployeeCode is the human-facing employee_id.
type Event struct {
	ID                string `json:"id"`
	Type              Type   `json:"type"`
	EmployeeID        string `json:"employee_id"`
	EmployeeCode      string `json:"employee_code,omitempty"`
	Date              string `json:"date,omitempty"`
	Status            string `json:"status,omitempty"`
	AttendanceRemoved int64  `json:"attendance_removed,omitempty"`
	OccurredAt        int64  `json:"t"` // Unix milliseconds
}

func newEvent(t Type, employeeID string, at time.Time) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       t,
		EmployeeID: employeeID,
		OccurredAt: at.UnixMilli(),
	}
}

// EmployeeCreated builds the event for a newly stored employee.
func EmployeeCreated(emp *model.Employee) Event {
	e := newEvent(TypeEmployeeCreated, emp.ID, emp.CreatedAt)
	e.EmployeeCode = emp.EmployeeID
	return e
}

// EmployeeDeleted builds the event for a removed employee and the number
// of attendance marks removed with it.
func EmployeeDeleted(emp *model.Employee, removed int64, at time.Time) Event {
	e := newEvent(TypeEmployeeDeleted, emp.ID, at)
	e.EmployeeCode = emp.EmployeeID
	e.AttendanceRemoved = removed
	return e
}

// AttendanceMarked builds the event for a new attendance mark.
func AttendanceMarked(rec model.AttendanceRecord) Event {
	e := newEvent(TypeAttendanceMarked, rec.EmployeeID, rec.CreatedAt)
	e.EmployeeCode = rec.EmployeeCode
	e.Date = rec.Date
	e.Status = string(rec.Status)
	return e
}
