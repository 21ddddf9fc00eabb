package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
)

const attendanceColumns = `id, employee_id, attendance_date, status, created_at`

var attendanceSortColumns = map[string]string{
	repository.SortDate:      "attendance_date",
	repository.SortCreatedAt: "created_at",
}

type attendanceTable struct {
	pool *pgxpool.Pool
}

// whereClause renders an equality filter starting at placeholder $1.
func whereClause(f repository.AttendanceFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if f.EmployeeID != "" {
		add("employee_id", f.EmployeeID)
	}
	if f.Date != "" {
		add("attendance_date", f.Date)
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Insert stores a new attendance mark under a freshly generated ObjectID.
func (t *attendanceTable) Insert(ctx context.Context, a *model.Attendance) (string, error) {
	id := model.NewID()
	query := `
		INSERT INTO attendance (` + attendanceColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := t.pool.Exec(ctx, query, id, a.EmployeeID, a.Date, string(a.Status), a.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert attendance: %w", translateWriteError(err))
	}
	return id, nil
}

// Find returns attendance matching filter in the requested order.
func (t *attendanceTable) Find(ctx context.Context, filter repository.AttendanceFilter, sort repository.Sort) ([]*model.Attendance, error) {
	order, err := orderBy(sort, attendanceSortColumns)
	if err != nil {
		return nil, err
	}

	where, args := whereClause(filter)
	rows, err := t.pool.Query(ctx, `SELECT `+attendanceColumns+` FROM attendance`+where+order, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]*model.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}
	return records, nil
}

// Count returns the number of marks matching filter.
func (t *attendanceTable) Count(ctx context.Context, filter repository.AttendanceFilter) (int64, error) {
	where, args := whereClause(filter)

	var n int64
	if err := t.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attendance`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return n, nil
}

// DeleteMany removes every mark matching filter and returns how many went.
func (t *attendanceTable) DeleteMany(ctx context.Context, filter repository.AttendanceFilter) (int64, error) {
	where, args := whereClause(filter)

	tag, err := t.pool.Exec(ctx, `DELETE FROM attendance`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PresentCounts groups Present marks by employee, highest count first.
func (t *attendanceTable) PresentCounts(ctx context.Context) ([]model.PresenceCount, error) {
	query := `
		SELECT employee_id, COUNT(*) AS present_days
		FROM attendance
		WHERE status = $1
		GROUP BY employee_id
		ORDER BY present_days DESC, employee_id ASC
	`

	rows, err := t.pool.Query(ctx, query, string(model.StatusPresent))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance: %w", err)
	}
	defer rows.Close()

	counts := make([]model.PresenceCount, 0)
	for rows.Next() {
		var c model.PresenceCount
		if err := rows.Scan(&c.EmployeeID, &c.PresentDays); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregation: %w", err)
	}
	return counts, nil
}

func scanAttendance(row pgx.Row) (*model.Attendance, error) {
	var a model.Attendance
	var status string
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.Date, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = model.AttendanceStatus(status)
	return &a, nil
}
