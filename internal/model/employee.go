// Package model defines domain entities for the application.
package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when an identifier is not a valid ObjectID hex string.
var ErrInvalidID = errors.New("invalid object id")

// Employee represents a person on the HR roster.
type Employee struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ParseID validates a store identifier and returns its canonical hex form.
// Both store backends use ObjectIDs, so the format check is shared.
func ParseID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return oid.Hex(), nil
}

// NewID generates a fresh ObjectID hex string.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
