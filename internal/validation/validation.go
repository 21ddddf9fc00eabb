// Package validation implements the field rules for employee and attendance
// payloads. Each resource is checked in one pass that returns normalized
// values plus every failing field, so nothing is persisted from a
// partially valid request.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field messages shared by both resources.
const (
	MsgRequired  = "This field is required."
	MsgBlank     = "This field may not be blank."
	MsgNotString = "Not a valid string."
)

var validate = validator.New()

// Errors maps a field name to its failure messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Empty reports whether no field failed.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Payload is a decoded JSON object body, kept raw so a missing field can be
// told apart from an empty one.
type Payload map[string]json.RawMessage

// stringField extracts field as a string. Numbers and booleans are accepted
// in their literal JSON form; objects and arrays are rejected.
func (p Payload) stringField(field string, errs Errors) (string, bool) {
	raw, ok := p[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		errs.Add(field, MsgRequired)
		return "", false
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs.Add(field, MsgNotString)
			return "", false
		}
		return s, true
	}
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		errs.Add(field, MsgNotString)
		return "", false
	}
	return string(raw), true
}

func maxLength(field, value string, limit int, errs Errors) bool {
	if len([]rune(value)) > limit {
		errs.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
		return false
	}
	return true
}

func isEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
