package validation

import (
	"regexp"
	"strconv"
	"time"

	"github.com/hrmslite/hrmslite/internal/model"
)

// Attendance field messages.
const (
	MsgDateFormat    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgFutureDate    = "Cannot mark attendance for future dates"
	MsgInvalidStatus = "Status must be either Present or Absent"
)

// Month and day may be written with one digit; the stored form is padded.
var datePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

// Attendance is a validated attendance payload. EmployeeID is not yet
// checked against the store.
type Attendance struct {
	EmployeeID string
	Date       string
	Status     model.AttendanceStatus
}

// ValidateAttendance checks the mark payload. today is the current calendar
// date in DateLayout; any later date is rejected.
func ValidateAttendance(p Payload, today string) (Attendance, Errors) {
	errs := Errors{}
	var out Attendance

	if v, ok := p.stringField("employee_id", errs); ok {
		v = trim(v)
		if v != "" {
			out.EmployeeID = v
		} else {
			errs.Add("employee_id", MsgBlank)
		}
	}

	if v, ok := p.stringField("date", errs); ok {
		if d, ok := ParseDate(trim(v)); !ok {
			errs.Add("date", MsgDateFormat)
		} else if d > today {
			errs.Add("date", MsgFutureDate)
		} else {
			out.Date = d
		}
	}

	if v, ok := p.stringField("status", errs); ok {
		s := model.AttendanceStatus(v)
		if s.IsValid() {
			out.Status = s
		} else {
			errs.Add("status", MsgInvalidStatus)
		}
	}

	return out, errs
}

// ParseDate parses an ISO-8601 calendar date and returns it in DateLayout.
// Impossible dates such as 2026-02-30 are rejected.
func ParseDate(s string) (string, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format(model.DateLayout), true
}
