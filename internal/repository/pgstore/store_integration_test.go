//go:build integration

package pgstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
	"github.com/hrmslite/hrmslite/internal/testutil"
)

func newTestStore(t *testing.T) (context.Context, *Store) {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := testutil.DropHRTables(ctx, pool); err != nil {
		t.Fatalf("failed to reset schema: %v", err)
	}

	store, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	return ctx, store
}

func TestIntegrationStore_EmployeeRoundTrip(t *testing.T) {
	ctx, store := newTestStore(t)

	emp := testutil.NewTestEmployee(t, "pg")
	id, err := store.Employees().Insert(ctx, emp)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := model.ParseID(id); err != nil {
		t.Fatalf("Insert returned non-ObjectID id %q", id)
	}

	got, err := store.Employees().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.EmployeeID != emp.EmployeeID || got.Email != emp.Email {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.CreatedAt.Equal(emp.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, emp.CreatedAt)
	}

	if err := store.Employees().DeleteByID(ctx, id); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if _, err := store.Employees().FindByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Employees().DeleteByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestIntegrationStore_DuplicateEmployee(t *testing.T) {
	ctx, store := newTestStore(t)

	first := testutil.NewTestEmployee(t, "dup")
	if _, err := store.Employees().Insert(ctx, first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	sameCode := testutil.NewTestEmployee(t, "other")
	sameCode.EmployeeID = first.EmployeeID
	_, err := store.Employees().Insert(ctx, sameCode)
	if field, ok := repository.IsDuplicateKey(err); !ok || field != repository.FieldEmployeeID {
		t.Errorf("expected employee_id duplicate, got %q %v", field, err)
	}

	sameEmail := testutil.NewTestEmployee(t, "third")
	sameEmail.Email = first.Email
	_, err = store.Employees().Insert(ctx, sameEmail)
	if field, ok := repository.IsDuplicateKey(err); !ok || field != repository.FieldEmail {
		t.Errorf("expected email duplicate, got %q %v", field, err)
	}
}

func TestIntegrationStore_AttendanceQueries(t *testing.T) {
	ctx, store := newTestStore(t)
	att := store.Attendance()

	marks := []*model.Attendance{
		testutil.NewTestAttendance(t, "a", "2026-01-05", model.StatusPresent),
		testutil.NewTestAttendance(t, "a", "2026-01-06", model.StatusPresent),
		testutil.NewTestAttendance(t, "b", "2026-01-05", model.StatusPresent),
		testutil.NewTestAttendance(t, "b", "2026-01-06", model.StatusAbsent),
		testutil.NewTestAttendance(t, "c", "2026-01-06", model.StatusPresent),
	}
	for _, m := range marks {
		if _, err := att.Insert(ctx, m); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	_, err := att.Insert(ctx, testutil.NewTestAttendance(t, "a", "2026-01-05", model.StatusAbsent))
	if field, ok := repository.IsDuplicateKey(err); !ok || field != repository.FieldDate {
		t.Errorf("expected date duplicate, got %q %v", field, err)
	}

	list, err := att.Find(ctx, repository.AttendanceFilter{EmployeeID: "a"}, repository.Sort{Field: repository.SortDate, Descending: true})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(list) != 2 || list[0].Date != "2026-01-06" {
		t.Errorf("unexpected history order: %+v", list)
	}

	n, err := att.Count(ctx, repository.AttendanceFilter{Date: "2026-01-06", Status: model.StatusPresent})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("present on 2026-01-06 = %d, want 2", n)
	}

	counts, err := att.PresentCounts(ctx)
	if err != nil {
		t.Fatalf("PresentCounts failed: %v", err)
	}
	want := []model.PresenceCount{
		{EmployeeID: "a", PresentDays: 2},
		{EmployeeID: "b", PresentDays: 1},
		{EmployeeID: "c", PresentDays: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("PresentCounts = %+v, want %+v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("PresentCounts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}

	removed, err := att.DeleteMany(ctx, repository.AttendanceFilter{EmployeeID: "b"})
	if err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteMany removed %d, want 2", removed)
	}
}
