// Package service provides business logic for the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrmslite/hrmslite/internal/events"
	"github.com/hrmslite/hrmslite/internal/metrics"
	"github.com/hrmslite/hrmslite/internal/model"
)

// DashboardCache stores the computed dashboard between writes.
// Every invalidation bumps a generation; SetDashboard only stores a value
// computed under the current generation.
type DashboardCache interface {
	GetDashboard(ctx context.Context, date string) (*model.Dashboard, error)
	DashboardGeneration(ctx context.Context) (int64, error)
	SetDashboard(ctx context.Context, d *model.Dashboard, gen int64, ttl time.Duration) (bool, error)
	InvalidateDashboard(ctx context.Context) error
}

// EventPublisher emits HR events without blocking the request.
type EventPublisher interface {
	PublishAsync(event events.Event)
}

// Options carries the optional collaborators shared by the services.
// Zero values disable the corresponding feature.
type Options struct {
	Cache        DashboardCache
	DashboardTTL time.Duration
	Events       EventPublisher
	Metrics      metrics.Recorder
	Logger       *slog.Logger
	Location     *time.Location
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Metrics == nil {
		o.Metrics = metrics.NewNoop()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DashboardTTL <= 0 {
		o.Cache = nil
	}
	return o
}

// today returns the current calendar date in the configured location.
func (o Options) today() string {
	return o.Now().In(o.Location).Format(model.DateLayout)
}

// timestamp returns now in UTC at the store's millisecond precision.
func (o Options) timestamp() time.Time {
	return o.Now().UTC().Truncate(time.Millisecond)
}

func (o Options) publish(e events.Event) {
	if o.Events != nil {
		o.Events.PublishAsync(e)
	}
}

func (o Options) invalidateDashboard(ctx context.Context) {
	if o.Cache == nil {
		return
	}
	if err := o.Cache.InvalidateDashboard(ctx); err != nil {
		o.Logger.Warn("dashboard cache invalidation failed", "error", err)
	}
}
