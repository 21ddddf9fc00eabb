package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hrmslite/hrmslite/internal/cache"
	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
)

// DashboardService computes the HR summary.
type DashboardService struct {
	store repository.Store
	opts  Options
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store repository.Store, opts Options) *DashboardService {
	return &DashboardService{store: store, opts: opts.withDefaults()}
}

// Get returns today's dashboard, from cache when a fresh copy exists.
// Cache failures fall through to a fresh computation. A result is only
// cached if no write invalidated the cache while it was being computed.
func (s *DashboardService) Get(ctx context.Context) (*model.Dashboard, error) {
	today := s.opts.today()

	cacheable := false
	var gen int64
	if s.opts.Cache != nil {
		d, err := s.opts.Cache.GetDashboard(ctx, today)
		if err == nil {
			s.opts.Metrics.IncDashboardCacheHit()
			return d, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.opts.Logger.Warn("dashboard cache read failed", "error", err)
		}
		s.opts.Metrics.IncDashboardCacheMiss()

		gen, err = s.opts.Cache.DashboardGeneration(ctx)
		if err != nil {
			s.opts.Logger.Warn("dashboard cache generation read failed", "error", err)
		} else {
			cacheable = true
		}
	}

	start := time.Now()
	d, err := s.compute(ctx, today)
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.ObserveDashboardDuration(time.Since(start))

	if cacheable {
		stored, err := s.opts.Cache.SetDashboard(ctx, d, gen, s.opts.DashboardTTL)
		switch {
		case err != nil:
			s.opts.Logger.Warn("dashboard cache write failed", "error", err)
		case !stored:
			s.opts.Logger.Debug("dashboard_cache_skipped", "generation", gen)
		}
	}

	return d, nil
}

func (s *DashboardService) compute(ctx context.Context, today string) (*model.Dashboard, error) {
	att := s.store.Attendance()

	total, err := s.store.Employees().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	present, err := att.Count(ctx, repository.AttendanceFilter{Date: today, Status: model.StatusPresent})
	if err != nil {
		return nil, fmt.Errorf("failed to count present: %w", err)
	}

	absent, err := att.Count(ctx, repository.AttendanceFilter{Date: today, Status: model.StatusAbsent})
	if err != nil {
		return nil, fmt.Errorf("failed to count absent: %w", err)
	}

	counts, err := att.PresentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance: %w", err)
	}

	byID, err := employeeIndex(ctx, s.store)
	if err != nil {
		return nil, err
	}

	stats := make([]model.EmployeePresence, 0, len(counts))
	for _, c := range counts {
		p := model.EmployeePresence{
			EmployeeID:   c.EmployeeID,
			EmployeeName: model.UnknownEmployee,
			EmployeeCode: model.UnknownEmployee,
			PresentDays:  c.PresentDays,
		}
		if emp, ok := byID[c.EmployeeID]; ok {
			p.EmployeeName = emp.FullName
			p.EmployeeCode = emp.EmployeeID
		}
		stats = append(stats, p)
	}

	return &model.Dashboard{
		TotalEmployees: total,
		Today: model.DaySummary{
			Date:      today,
			Present:   present,
			Absent:    absent,
			NotMarked: total - present - absent,
		},
		EmployeeStats: stats,
	}, nil
}
