package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Employee field limits.
const (
	MaxEmployeeIDLength = 50
	MaxFullNameLength   = 100
	MaxDepartmentLength = 100
	MinFullNameLength   = 2
)

// Employee field messages.
const (
	MsgEmployeeIDAlphanumeric = "Employee ID must be alphanumeric"
	MsgFullNameTooShort       = "Full name must be at least 2 characters"
	MsgInvalidEmail           = "Enter a valid email address."
	MsgDepartmentRequired     = "Department is required"
)

var employeeIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Employee is a validated, normalized employee payload.
type Employee struct {
	EmployeeID string
	FullName   string
	Email      string
	Department string
}

// ValidateEmployee checks every employee field and returns the normalized
// values. The result is only meaningful when errs is empty.
func ValidateEmployee(p Payload) (Employee, Errors) {
	errs := Errors{}
	var out Employee

	if v, ok := p.stringField("employee_id", errs); ok {
		v = trim(v)
		if maxLength("employee_id", v, MaxEmployeeIDLength, errs) {
			if employeeIDPattern.MatchString(v) {
				out.EmployeeID = v
			} else {
				errs.Add("employee_id", MsgEmployeeIDAlphanumeric)
			}
		}
	}

	if v, ok := p.stringField("full_name", errs); ok {
		v = trim(v)
		if maxLength("full_name", v, MaxFullNameLength, errs) {
			if utf8.RuneCountInString(v) >= MinFullNameLength {
				out.FullName = v
			} else {
				errs.Add("full_name", MsgFullNameTooShort)
			}
		}
	}

	if v, ok := p.stringField("email", errs); ok {
		v = trim(v)
		if isEmail(v) {
			out.Email = strings.ToLower(v)
		} else {
			errs.Add("email", MsgInvalidEmail)
		}
	}

	if v, ok := p.stringField("department", errs); ok {
		v = trim(v)
		if maxLength("department", v, MaxDepartmentLength, errs) {
			if v != "" {
				out.Department = v
			} else {
				errs.Add("department", MsgDepartmentRequired)
			}
		}
	}

	return out, errs
}
