package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	EmployeesCreated         uint64
	EmployeesDeleted         uint64
	AttendanceCascaded       uint64
	AttendanceMarked         uint64
	DashboardCacheHits       uint64
	DashboardCacheMisses     uint64
	DashboardDurationCount   uint64
	DashboardDurationTotalNs int64
	EventsPublished          uint64
	EventsDropped            uint64
	RateLimited              uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and is used directly by tests.
type InMemoryRecorder struct {
	employeesCreated         atomic.Uint64
	employeesDeleted         atomic.Uint64
	attendanceCascaded       atomic.Uint64
	attendanceMarked         atomic.Uint64
	dashboardCacheHits       atomic.Uint64
	dashboardCacheMisses     atomic.Uint64
	dashboardDurationCount   atomic.Uint64
	dashboardDurationTotalNs atomic.Int64
	eventsPublished          atomic.Uint64
	eventsDropped            atomic.Uint64
	rateLimited              atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		EmployeesCreated:         m.employeesCreated.Load(),
		EmployeesDeleted:         m.employeesDeleted.Load(),
		AttendanceCascaded:       m.attendanceCascaded.Load(),
		AttendanceMarked:         m.attendanceMarked.Load(),
		DashboardCacheHits:       m.dashboardCacheHits.Load(),
		DashboardCacheMisses:     m.dashboardCacheMisses.Load(),
		DashboardDurationCount:   m.dashboardDurationCount.Load(),
		DashboardDurationTotalNs: m.dashboardDurationTotalNs.Load(),
		EventsPublished:          m.eventsPublished.Load(),
		EventsDropped:            m.eventsDropped.Load(),
		RateLimited:              m.rateLimited.Load(),
	}
}

// IncEmployeeCreated increments the employee created counter.
func (m *InMemoryRecorder) IncEmployeeCreated() {
	m.employeesCreated.Add(1)
}

// IncEmployeeDeleted increments the employee deleted counter.
func (m *InMemoryRecorder) IncEmployeeDeleted() {
	m.employeesDeleted.Add(1)
}

// AddAttendanceCascaded counts attendance removed by employee deletion.
func (m *InMemoryRecorder) AddAttendanceCascaded(n int64) {
	if n > 0 {
		m.attendanceCascaded.Add(uint64(n))
	}
}

// IncAttendanceMarked increments the attendance marked counter.
func (m *InMemoryRecorder) IncAttendanceMarked() {
	m.attendanceMarked.Add(1)
}

// IncDashboardCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncDashboardCacheHit() {
	m.dashboardCacheHits.Add(1)
}

// IncDashboardCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncDashboardCacheMiss() {
	m.dashboardCacheMisses.Add(1)
}

// ObserveDashboardDuration records how long a dashboard computation took.
func (m *InMemoryRecorder) ObserveDashboardDuration(duration time.Duration) {
	m.dashboardDurationCount.Add(1)
	m.dashboardDurationTotalNs.Add(duration.Nanoseconds())
}

// IncEventPublished counts a stream publish by outcome.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == StatusDropped {
		m.eventsDropped.Add(1)
		return
	}
	m.eventsPublished.Add(1)
}

// IncRateLimited counts throttled requests.
func (m *InMemoryRecorder) IncRateLimited() {
	m.rateLimited.Add(1)
}
