package model

import "time"

// AttendanceStatus is the mark recorded for an employee on a given day.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

// DateLayout is the ISO-8601 calendar date format attendance dates are stored in.
const DateLayout = "2006-01-02"

// UnknownEmployee is shown when an attendance record points at a missing employee.
const UnknownEmployee = "Unknown"

// IsValid checks if the status is one of the accepted marks.
func (s AttendanceStatus) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Attendance is a single daily mark. EmployeeID holds the string form of
// Employee.ID; the store does not enforce the reference.
type Attendance struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employee_id"`
	Date       string           `json:"date"`
	Status     AttendanceStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// AttendanceRecord is an attendance mark enriched with employee display fields.
type AttendanceRecord struct {
	Attendance
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code"`
}

// Enrich attaches display fields from emp, falling back to UnknownEmployee.
func (a *Attendance) Enrich(emp *Employee) AttendanceRecord {
	rec := AttendanceRecord{
		Attendance:   *a,
		EmployeeName: UnknownEmployee,
		EmployeeCode: UnknownEmployee,
	}
	if emp != nil {
		rec.EmployeeName = emp.FullName
		rec.EmployeeCode = emp.EmployeeID
	}
	return rec
}

// AttendanceStats summarizes an employee's attendance history.
type AttendanceStats struct {
	TotalDays   int `json:"total_days"`
	PresentDays int `json:"present_days"`
	AbsentDays  int `json:"absent_days"`
}

// ComputeStats counts marks. Anything that is not Present counts as absent.
func ComputeStats(records []*Attendance) AttendanceStats {
	stats := AttendanceStats{TotalDays: len(records)}
	for _, r := range records {
		if r.Status == StatusPresent {
			stats.PresentDays++
		}
	}
	stats.AbsentDays = stats.TotalDays - stats.PresentDays
	return stats
}

// PresenceCount is one row of the present-days aggregation.
type PresenceCount struct {
	EmployeeID  string
	PresentDays int64
}

// EmployeeSummary is the slice of an employee shown beside its history.
type EmployeeSummary struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

// Summary returns the history header for e.
func (e *Employee) Summary() EmployeeSummary {
	return EmployeeSummary{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Department: e.Department,
	}
}

// AttendanceHistory is one employee's marks, newest first, with totals.
type AttendanceHistory struct {
	Employee EmployeeSummary    `json:"employee"`
	Stats    AttendanceStats    `json:"stats"`
	Records  []AttendanceRecord `json:"records"`
}
