package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hrmslite/hrmslite/internal/handler/dto"
	"github.com/hrmslite/hrmslite/internal/service"
)

// EmployeeHandler handles HTTP requests for employee operations.
type EmployeeHandler struct {
	svc *service.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// List handles GET /api/employees/.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) error {
	employees, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, "Employees retrieved successfully", dto.ToEmployeeList(employees))
	return nil
}

// Create handles POST /api/employees/.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) error {
	p, err := decodePayload(r)
	if err != nil {
		return err
	}

	emp, err := h.svc.Create(r.Context(), p)
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusCreated, "Employee created successfully", dto.ToEmployeeResponse(emp))
	return nil
}

// Get handles GET /api/employees/{id}/.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) error {
	emp, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, "Employee retrieved successfully", dto.ToEmployeeResponse(emp))
	return nil
}

// Delete handles DELETE /api/employees/{id}/. Attendance goes with it.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, "Employee deleted successfully", nil)
	return nil
}
