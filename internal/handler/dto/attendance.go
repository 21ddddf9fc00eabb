package dto

import (
	"time"

	"github.com/hrmslite/hrmslite/internal/model"
)

// AttendanceResponse represents an enriched attendance mark.
type AttendanceResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	EmployeeName string    `json:"employee_name"`
	EmployeeCode string    `json:"employee_code"`
}

// HistoryResponse is one employee's attendance with totals.
type HistoryResponse struct {
	Employee model.EmployeeSummary `json:"employee"`
	Stats    model.AttendanceStats `json:"stats"`
	Records  []AttendanceResponse  `json:"records"`
}

// ToAttendanceResponse converts an AttendanceRecord to its DTO.
func ToAttendanceResponse(r model.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		Date:         r.Date,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		EmployeeName: r.EmployeeName,
		EmployeeCode: r.EmployeeCode,
	}
}

// ToAttendanceList converts records; no records encodes as [].
func ToAttendanceList(records []model.AttendanceRecord) []AttendanceResponse {
	out := make([]AttendanceResponse, len(records))
	for i, r := range records {
		out[i] = ToAttendanceResponse(r)
	}
	return out
}

// ToHistoryResponse converts an AttendanceHistory to its DTO.
func ToHistoryResponse(h *model.AttendanceHistory) HistoryResponse {
	return HistoryResponse{
		Employee: h.Employee,
		Stats:    h.Stats,
		Records:  ToAttendanceList(h.Records),
	}
}

// ToDashboardResponse normalizes a dashboard for output.
func ToDashboardResponse(d *model.Dashboard) model.Dashboard {
	out := *d
	if out.EmployeeStats == nil {
		out.EmployeeStats = []model.EmployeePresence{}
	}
	return out
}
