package service

import "fmt"

// Kind classifies a service failure for the HTTP layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindMalformedID
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindMalformedID:
		return "malformed_id"
	case KindBadRequest:
		return "bad_request"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Client-facing messages.
const (
	MsgValidationFailed   = "Validation failed"
	MsgDuplicateEntry     = "A duplicate entry exists"
	MsgInvalidEmployeeID  = "Invalid employee ID format"
	MsgEmployeeNotFound   = "Employee not found"
	MsgEmployeeMissing    = "Employee does not exist"
	MsgEmployeeIDTaken    = "This employee ID already exists"
	MsgEmailTaken         = "This email is already registered"
	MsgAttendanceExists   = "Attendance already marked for this employee on this date"
	MsgAttendanceDayTaken = "Attendance already exists for this date"
)

// Error is a failure the client can act on. Fields maps a request field to
// its messages and is never nil.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, msg string, fields map[string][]string) *Error {
	if fields == nil {
		fields = map[string][]string{}
	}
	return &Error{Kind: kind, Message: msg, Fields: fields}
}

// ValidationError reports per-field validation failures.
func ValidationError(fields map[string][]string) *Error {
	return newError(KindValidation, MsgValidationFailed, fields)
}

// NotFoundError reports a missing resource.
func NotFoundError(msg string, fields map[string][]string) *Error {
	return newError(KindNotFound, msg, fields)
}

// ConflictError reports a unique constraint collision.
func ConflictError(msg string, fields map[string][]string) *Error {
	return newError(KindConflict, msg, fields)
}

// MalformedIDError reports an identifier that is not an ObjectID.
func MalformedIDError() *Error {
	return newError(KindMalformedID, MsgInvalidEmployeeID, nil)
}

// BadRequestError reports an undecodable request.
func BadRequestError(msg string) *Error {
	return newError(KindBadRequest, msg, nil)
}

func field(name, msg string) map[string][]string {
	return map[string][]string{name: {msg}}
}
