package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hrmslite/hrmslite/internal/handler/dto"
	"github.com/hrmslite/hrmslite/internal/service"
)

// AttendanceHandler handles attendance and dashboard requests.
type AttendanceHandler struct {
	svc       *service.AttendanceService
	dashboard *service.DashboardService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(svc *service.AttendanceService, dashboard *service.DashboardService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, dashboard: dashboard}
}

// List handles GET /api/attendance/. The date query parameter is matched
// verbatim against stored dates.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) error {
	records, err := h.svc.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, "Attendance records retrieved successfully", dto.ToAttendanceList(records))
	return nil
}

// Mark handles POST /api/attendance/.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) error {
	p, err := decodePayload(r)
	if err != nil {
		return err
	}

	rec, err := h.svc.Mark(r.Context(), p)
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusCreated, "Attendance marked successfully", dto.ToAttendanceResponse(rec))
	return nil
}

// History handles GET /api/attendance/employee/{id}/.
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) error {
	hist, err := h.svc.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, "Employee attendance retrieved successfully", dto.ToHistoryResponse(hist))
	return nil
}

// Dashboard handles GET /api/attendance/dashboard/.
func (h *AttendanceHandler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	d, err := h.dashboard.Get(r.Context())
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, "Dashboard data retrieved successfully", dto.ToDashboardResponse(d))
	return nil
}
