// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Event publish outcomes.
const (
	StatusSuccess = "success"
	StatusDropped = "dropped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Roster metrics
	IncEmployeeCreated()
	IncEmployeeDeleted()
	AddAttendanceCascaded(n int64)
	IncAttendanceMarked()

	// Dashboard metrics
	IncDashboardCacheHit()
	IncDashboardCacheMiss()
	ObserveDashboardDuration(duration time.Duration)

	// HR event stream metrics
	IncEventPublished(status string) // status: "success" or "dropped"

	// Throttling
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
