package dto

import (
	"time"

	"github.com/hrmslite/hrmslite/internal/model"
)

// EmployeeResponse represents an employee in API responses.
type EmployeeResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToEmployeeResponse converts an Employee model to EmployeeResponse DTO.
func ToEmployeeResponse(e *model.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// ToEmployeeList converts employees; an empty roster encodes as [].
func ToEmployeeList(employees []*model.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		out[i] = ToEmployeeResponse(e)
	}
	return out
}
