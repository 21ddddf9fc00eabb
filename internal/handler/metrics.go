package handler

import (
	"fmt"
	"net/http"

	"github.com/hrmslite/hrmslite/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "hrms_employees_created_total %d\n", snap.EmployeesCreated)
	writeMetric(w, "hrms_employees_deleted_total %d\n", snap.EmployeesDeleted)
	writeMetric(w, "hrms_attendance_cascaded_total %d\n", snap.AttendanceCascaded)
	writeMetric(w, "hrms_attendance_marked_total %d\n", snap.AttendanceMarked)

	writeMetric(w, "hrms_dashboard_cache_hits_total %d\n", snap.DashboardCacheHits)
	writeMetric(w, "hrms_dashboard_cache_misses_total %d\n", snap.DashboardCacheMisses)
	writeMetric(w, "hrms_dashboard_duration_seconds_count %d\n", snap.DashboardDurationCount)
	writeMetric(w, "hrms_dashboard_duration_seconds_sum %.6f\n", float64(snap.DashboardDurationTotalNs)/1e9)

	writeMetric(w, "hrms_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "hrms_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)

	writeMetric(w, "hrms_rate_limited_total %d\n", snap.RateLimited)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
