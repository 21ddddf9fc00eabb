package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hrmslite/hrmslite/internal/cache"
	"github.com/hrmslite/hrmslite/internal/events"
	"github.com/hrmslite/hrmslite/internal/metrics"
	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
	"github.com/hrmslite/hrmslite/internal/testutil"
	"github.com/hrmslite/hrmslite/internal/validation"
)

// fixedNow is 2026-01-10 10:00 UTC.
var fixedNow = time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

type fakeCache struct {
	mu          sync.Mutex
	stored      *model.Dashboard
	gen         int64
	gets        int
	invalidated int
	skipped     int
	readErr     error
}

func (c *fakeCache) GetDashboard(_ context.Context, date string) (*model.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.stored == nil || c.stored.Today.Date != date {
		return nil, cache.ErrCacheMiss
	}
	d := *c.stored
	return &d, nil
}

func (c *fakeCache) DashboardGeneration(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *fakeCache) SetDashboard(_ context.Context, d *model.Dashboard, gen int64, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.skipped++
		return false, nil
	}
	cp := *d
	c.stored = &cp
	return true, nil
}

func (c *fakeCache) InvalidateDashboard(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = nil
	c.gen++
	c.invalidated++
	return nil
}

// hookedStore runs beforePresentCounts in the middle of a dashboard
// computation, after the per-day counts were read.
type hookedStore struct {
	*testutil.MemStore
	beforePresentCounts func()
}

func (s *hookedStore) Attendance() repository.AttendanceCollection {
	return hookedAttendance{AttendanceCollection: s.MemStore.Attendance(), hook: s.beforePresentCounts}
}

type hookedAttendance struct {
	repository.AttendanceCollection
	hook func()
}

func (a hookedAttendance) PresentCounts(ctx context.Context) ([]model.PresenceCount, error) {
	a.hook()
	return a.AttendanceCollection.PresentCounts(ctx)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) PublishAsync(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store      *testutil.MemStore
	employees  *EmployeeService
	attendance *AttendanceService
	dashboard  *DashboardService
	cache      *fakeCache
	events     *fakePublisher
	metrics    *metrics.InMemoryRecorder
	opts       Options
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   testutil.NewMemStore(),
		cache:   &fakeCache{},
		events:  &fakePublisher{},
		metrics: metrics.NewInMemory(),
	}
	opts := Options{
		Cache:        env.cache,
		DashboardTTL: time.Minute,
		Events:       env.events,
		Metrics:      env.metrics,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location:     time.UTC,
		Now:          func() time.Time { return fixedNow },
	}
	env.opts = opts
	env.employees = NewEmployeeService(env.store, opts)
	env.attendance = NewAttendanceService(env.store, opts)
	env.dashboard = NewDashboardService(env.store, opts)
	return env
}

func body(t *testing.T, v any) validation.Payload {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var p validation.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return p
}

func employeeBody(t *testing.T, code, name, email string) validation.Payload {
	return body(t, map[string]string{
		"employee_id": code,
		"full_name":   name,
		"email":       email,
		"department":  "Engineering",
	})
}

func markBody(t *testing.T, id, date, status string) validation.Payload {
	return body(t, map[string]string{"employee_id": id, "date": date, "status": status})
}

func mustCreate(t *testing.T, env *testEnv, code, name, email string) *model.Employee {
	t.Helper()
	emp, err := env.employees.Create(context.Background(), employeeBody(t, code, name, email))
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", code, err)
	}
	return emp
}

func mustMark(t *testing.T, env *testEnv, id, date, status string) model.AttendanceRecord {
	t.Helper()
	rec, err := env.attendance.Mark(context.Background(), markBody(t, id, date, status))
	if err != nil {
		t.Fatalf("Mark(%s, %s) failed: %v", id, date, err)
	}
	return rec
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *service.Error, got %v", err)
	}
	if svcErr.Kind != kind {
		t.Fatalf("Kind = %v, want %v (%s)", svcErr.Kind, kind, svcErr.Message)
	}
	if svcErr.Fields == nil {
		t.Fatal("Fields must never be nil")
	}
	return svcErr
}

func TestEmployeeService_CreateAndGet(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	created := mustCreate(t, env, "E1", "Ann Lee", "Ann@X.com")
	if created.Email != "ann@x.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if !created.CreatedAt.Equal(fixedNow) || !created.UpdatedAt.Equal(created.CreatedAt) {
		t.Errorf("timestamps = %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := env.employees.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *got != *created {
		t.Errorf("Get = %+v, want %+v", got, created)
	}

	if snap := env.metrics.Snapshot(); snap.EmployeesCreated != 1 {
		t.Errorf("EmployeesCreated = %d", snap.EmployeesCreated)
	}
	if types := env.events.types(); len(types) != 1 || types[0] != events.TypeEmployeeCreated {
		t.Errorf("events = %v", types)
	}
}

func TestEmployeeService_CreateDuplicates(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")

	_, err := env.employees.Create(ctx, employeeBody(t, "E1", "Bob Ray", "bob@x.com"))
	e := requireKind(t, err, KindValidation)
	if e.Message != MsgValidationFailed || e.Fields["employee_id"][0] != MsgEmployeeIDTaken {
		t.Errorf("unexpected error: %+v", e)
	}

	_, err = env.employees.Create(ctx, employeeBody(t, "E2", "Bob Ray", " ANN@x.com "))
	e = requireKind(t, err, KindValidation)
	if e.Fields["email"][0] != MsgEmailTaken {
		t.Errorf("unexpected error: %+v", e)
	}
	if _, ok := e.Fields["employee_id"]; ok {
		t.Error("email collision must not report employee_id")
	}
}

func TestEmployeeService_CreateValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.employees.Create(context.Background(), employeeBody(t, "E-1", "A", "nope"))
	e := requireKind(t, err, KindValidation)
	for _, f := range []string{"employee_id", "full_name", "email"} {
		if len(e.Fields[f]) == 0 {
			t.Errorf("missing error for %s: %v", f, e.Fields)
		}
	}

	n, _ := env.store.Employees().Count(context.Background())
	if n != 0 {
		t.Errorf("invalid payload must not be stored, count = %d", n)
	}
}

func TestDuplicateEmployee_UnknownField(t *testing.T) {
	t.Parallel()

	e := duplicateEmployee("")
	if e.Kind != KindConflict || e.Message != MsgDuplicateEntry || len(e.Fields) != 0 {
		t.Errorf("unexpected error: %+v", e)
	}
}

func TestEmployeeService_GetErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.employees.Get(ctx, "not-an-id")
	if e := requireKind(t, err, KindMalformedID); e.Message != MsgInvalidEmployeeID {
		t.Errorf("message = %q", e.Message)
	}

	_, err = env.employees.Get(ctx, model.NewID())
	if e := requireKind(t, err, KindNotFound); e.Message != MsgEmployeeNotFound || len(e.Fields) != 0 {
		t.Errorf("unexpected error: %+v", e)
	}
}

func TestEmployeeService_List(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	list, err := env.employees.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("empty roster should be an empty slice, got %v", list)
	}

	mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")
	mustCreate(t, env, "E2", "Bob Ray", "bob@x.com")

	list, err = env.employees.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].EmployeeID != "E2" {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestEmployeeService_DeleteCascades(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	ann := mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")
	bob := mustCreate(t, env, "E2", "Bob Ray", "bob@x.com")
	mustMark(t, env, ann.ID, "2026-01-08", "Present")
	mustMark(t, env, ann.ID, "2026-01-09", "Absent")
	mustMark(t, env, bob.ID, "2026-01-09", "Present")

	if err := env.employees.Delete(ctx, ann.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if env.store.AttendanceCount() != 1 {
		t.Errorf("attendance left = %d, want 1", env.store.AttendanceCount())
	}
	_, err := env.attendance.History(ctx, ann.ID)
	requireKind(t, err, KindNotFound)
	_, err = env.employees.Get(ctx, ann.ID)
	requireKind(t, err, KindNotFound)

	err = env.employees.Delete(ctx, ann.ID)
	requireKind(t, err, KindNotFound)
	err = env.employees.Delete(ctx, "zzz")
	requireKind(t, err, KindMalformedID)

	snap := env.metrics.Snapshot()
	if snap.EmployeesDeleted != 1 || snap.AttendanceCascaded != 2 {
		t.Errorf("metrics = %+v", snap)
	}

	var deleted *events.Event
	for _, e := range env.events.events {
		if e.Type == events.TypeEmployeeDeleted {
			e := e
			deleted = &e
		}
	}
	if deleted == nil || deleted.AttendanceRemoved != 2 {
		t.Errorf("deleted event = %+v", deleted)
	}
}

func TestAttendanceService_Mark(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	ann := mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")

	rec := mustMark(t, env, ann.ID, "2026-01-10", "Present")
	if rec.EmployeeName != "Ann Lee" || rec.EmployeeCode != "E1" || rec.EmployeeID != ann.ID {
		t.Errorf("record not enriched: %+v", rec)
	}
	if rec.ID == "" || !rec.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected record: %+v", rec)
	}

	_, err := env.attendance.Mark(ctx, markBody(t, ann.ID, "2026-01-10", "Absent"))
	e := requireKind(t, err, KindConflict)
	if e.Message != MsgAttendanceExists || e.Fields["date"][0] != MsgAttendanceDayTaken {
		t.Errorf("unexpected error: %+v", e)
	}

	mustMark(t, env, ann.ID, "2026-01-09", "Absent")

	_, err = env.attendance.Mark(ctx, markBody(t, ann.ID, "2026-01-11", "Present"))
	e = requireKind(t, err, KindValidation)
	if e.Fields["date"][0] != validation.MsgFutureDate {
		t.Errorf("unexpected error: %+v", e)
	}

	if env.metrics.Snapshot().AttendanceMarked != 2 {
		t.Errorf("AttendanceMarked = %d", env.metrics.Snapshot().AttendanceMarked)
	}
}

func TestAttendanceService_MarkUnknownEmployee(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.attendance.Mark(ctx, markBody(t, "bogus", "2026-01-10", "Present"))
	if e := requireKind(t, err, KindMalformedID); e.Message != MsgInvalidEmployeeID {
		t.Errorf("message = %q", e.Message)
	}

	_, err = env.attendance.Mark(ctx, markBody(t, model.NewID(), "2026-01-10", "Present"))
	e := requireKind(t, err, KindNotFound)
	if e.Message != MsgEmployeeNotFound || e.Fields["employee_id"][0] != MsgEmployeeMissing {
		t.Errorf("unexpected error: %+v", e)
	}

	if env.store.AttendanceCount() != 0 {
		t.Error("no attendance should be stored")
	}
}

func TestAttendanceService_ListEnrichesAndFilters(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	ann := mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")
	mustMark(t, env, ann.ID, "2026-01-08", "Present")
	mustMark(t, env, ann.ID, "2026-01-09", "Absent")

	orphan := testutil.NewTestAttendance(t, model.NewID(), "2026-01-07", model.StatusPresent)
	if _, err := env.store.Attendance().Insert(ctx, orphan); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	all, err := env.attendance.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Date != "2026-01-09" || all[2].Date != "2026-01-07" {
		t.Errorf("not sorted by date desc: %v, %v", all[0].Date, all[2].Date)
	}
	if all[2].EmployeeName != model.UnknownEmployee || all[2].EmployeeCode != model.UnknownEmployee {
		t.Errorf("orphan not marked unknown: %+v", all[2])
	}

	day, err := env.attendance.List(ctx, "2026-01-08")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(day) != 1 || day[0].Status != model.StatusPresent {
		t.Errorf("date filter = %+v", day)
	}

	none, err := env.attendance.List(ctx, "yesterday")
	if err != nil {
		t.Fatalf("List with junk date failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("junk date should match nothing, got %v", none)
	}
}

func TestAttendanceService_History(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	ann := mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")
	mustMark(t, env, ann.ID, "2026-01-07", "Present")
	mustMark(t, env, ann.ID, "2026-01-09", "Absent")
	mustMark(t, env, ann.ID, "2026-01-08", "Present")

	h, err := env.attendance.History(ctx, ann.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	wantStats := model.AttendanceStats{TotalDays: 3, PresentDays: 2, AbsentDays: 1}
	if h.Stats != wantStats {
		t.Errorf("Stats = %+v, want %+v", h.Stats, wantStats)
	}
	if h.Employee != ann.Summary() {
		t.Errorf("Employee = %+v", h.Employee)
	}
	if h.Records[0].Date != "2026-01-09" || h.Records[2].Date != "2026-01-07" {
		t.Errorf("records not newest first: %+v", h.Records)
	}

	empty := mustCreate(t, env, "E2", "Bob Ray", "bob@x.com")
	h, err = env.attendance.History(ctx, empty.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if h.Records == nil || len(h.Records) != 0 || h.Stats.TotalDays != 0 {
		t.Errorf("empty history = %+v", h)
	}
}

func TestDashboardService_Summary(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	ann := mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")
	bob := mustCreate(t, env, "E2", "Bob Ray", "bob@x.com")
	mustCreate(t, env, "E3", "Cy Tan", "cy@x.com")

	today := fixedNow.Format(model.DateLayout)
	mustMark(t, env, ann.ID, today, "Present")
	mustMark(t, env, bob.ID, today, "Absent")
	mustMark(t, env, bob.ID, "2026-01-05", "Present")
	mustMark(t, env, ann.ID, "2026-01-04", "Present")

	d, err := env.dashboard.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := model.DaySummary{Date: today, Present: 1, Absent: 1, NotMarked: 1}
	if d.TotalEmployees != 3 || d.Today != want {
		t.Errorf("dashboard = %+v", d)
	}
	if len(d.EmployeeStats) != 2 {
		t.Fatalf("EmployeeStats = %+v", d.EmployeeStats)
	}
	if d.EmployeeStats[0].EmployeeCode != "E1" || d.EmployeeStats[0].PresentDays != 2 {
		t.Errorf("top stat = %+v", d.EmployeeStats[0])
	}
	if d.EmployeeStats[1].EmployeeName != "Bob Ray" || d.EmployeeStats[1].PresentDays != 1 {
		t.Errorf("second stat = %+v", d.EmployeeStats[1])
	}
}

func TestDashboardService_NotMarkedGoesNegative(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	today := fixedNow.Format(model.DateLayout)
	for i := 0; i < 2; i++ {
		orphan := testutil.NewTestAttendance(t, model.NewID(), today, model.StatusPresent)
		if _, err := env.store.Attendance().Insert(ctx, orphan); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	d, err := env.dashboard.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if d.Today.NotMarked != -2 {
		t.Errorf("NotMarked = %d, want -2", d.Today.NotMarked)
	}
	for _, s := range d.EmployeeStats {
		if s.EmployeeName != model.UnknownEmployee {
			t.Errorf("orphan stat should be unknown: %+v", s)
		}
	}
}

func TestDashboardService_CacheLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.dashboard.Get(ctx); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := env.dashboard.Get(ctx); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	snap := env.metrics.Snapshot()
	if snap.DashboardCacheMisses != 1 || snap.DashboardCacheHits != 1 {
		t.Errorf("cache metrics = %+v", snap)
	}

	mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")
	if env.cache.invalidated == 0 {
		t.Fatal("create should invalidate the dashboard")
	}

	d, err := env.dashboard.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if d.TotalEmployees != 1 {
		t.Errorf("stale dashboard served after write: %+v", d)
	}
}

func TestDashboardService_WriteDuringComputeIsNotCached(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	today := fixedNow.Format(model.DateLayout)

	emp := mustCreate(t, env, "E1", "Ann Lee", "ann@x.com")

	var once sync.Once
	store := &hookedStore{MemStore: env.store}
	store.beforePresentCounts = func() {
		once.Do(func() { mustMark(t, env, emp.ID, today, "Present") })
	}
	dash := NewDashboardService(store, env.opts)

	first, err := dash.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first.Today.Present != 0 {
		t.Fatalf("first Get should predate the mark, got present=%d", first.Today.Present)
	}
	if env.cache.skipped != 1 || env.cache.stored != nil {
		t.Fatalf("result computed across a write must not be cached: skipped=%d stored=%+v",
			env.cache.skipped, env.cache.stored)
	}

	second, err := dash.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if second.Today.Present != 1 || second.Today.NotMarked != 0 {
		t.Errorf("stale dashboard served: present=%d not_marked=%d, want 1 and 0",
			second.Today.Present, second.Today.NotMarked)
	}
	if env.cache.stored == nil || env.cache.stored.Today.Present != 1 {
		t.Errorf("fresh dashboard should be cached, got %+v", env.cache.stored)
	}
}

func TestDashboardService_CacheErrorsFailOpen(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.cache.readErr = errors.New("redis down")

	d, err := env.dashboard.Get(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail the request: %v", err)
	}
	if d.Today.Date != fixedNow.Format(model.DateLayout) {
		t.Errorf("unexpected dashboard: %+v", d)
	}
}

func TestDashboardService_StoreFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.store.FailWith(errors.New("connection refused"))

	_, err := env.dashboard.Get(context.Background())
	var svcErr *Error
	if err == nil || errors.As(err, &svcErr) {
		t.Errorf("store failure should surface as an internal error, got %v", err)
	}
}

func TestOptions_TodayUsesLocation(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*3600)
	opts := Options{
		Location: tokyo,
		Now:      func() time.Time { return time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC) },
	}.withDefaults()

	if got := opts.today(); got != "2026-01-11" {
		t.Errorf("today = %q, want 2026-01-11", got)
	}
}

func TestOptions_ZeroTTLDisablesCache(t *testing.T) {
	t.Parallel()

	opts := Options{Cache: &fakeCache{}}.withDefaults()
	if opts.Cache != nil {
		t.Error("zero TTL should disable the cache")
	}
}
