package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncEmployeeCreated is a no-op.
func (n *NoopRecorder) IncEmployeeCreated() {}

// IncEmployeeDeleted is a no-op.
func (n *NoopRecorder) IncEmployeeDeleted() {}

// AddAttendanceCascaded is a no-op.
func (n *NoopRecorder) AddAttendanceCascaded(count int64) {}

// IncAttendanceMarked is a no-op.
func (n *NoopRecorder) IncAttendanceMarked() {}

// IncDashboardCacheHit is a no-op.
func (n *NoopRecorder) IncDashboardCacheHit() {}

// IncDashboardCacheMiss is a no-op.
func (n *NoopRecorder) IncDashboardCacheMiss() {}

// ObserveDashboardDuration is a no-op.
func (n *NoopRecorder) ObserveDashboardDuration(duration time.Duration) {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(status string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
