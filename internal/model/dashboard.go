package model

// Dashboard is the summary shown on the HR landing page.
// It is serialized as-is into the Redis dashboard cache.
type Dashboard struct {
	TotalEmployees int64              `json:"total_employees"`
	Today          DaySummary         `json:"today"`
	EmployeeStats  []EmployeePresence `json:"employee_stats"`
}

// DaySummary counts marks for a single calendar date.
// NotMarked is derived and can go negative when attendance references
// employees that no longer exist.
type DaySummary struct {
	Date      string `json:"date"`
	Present   int64  `json:"present"`
	Absent    int64  `json:"absent"`
	NotMarked int64  `json:"not_marked"`
}

// EmployeePresence is a per-employee present-days total.
type EmployeePresence struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code"`
	PresentDays  int64  `json:"present_days"`
}
