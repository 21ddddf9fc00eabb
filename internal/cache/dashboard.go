package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hrmslite/hrmslite/internal/model"
)

const (
	// dashboardKey holds the most recent dashboard payload. The payload
	// carries its own date, so a value computed yesterday reads as a miss today.
	dashboardKey = "dashboard:summary"
	// dashboardGenKey is bumped by every invalidation.
	dashboardGenKey = "dashboard:gen"
)

// setDashboardScript stores the payload only while the generation still
// matches the one read before the dashboard was computed.
var setDashboardScript = redis.NewScript(`
	local gen_key = KEYS[1]
	local key = KEYS[2]
	local want = tonumber(ARGV[1])
	local payload = ARGV[2]
	local ttl_ms = tonumber(ARGV[3])

	local current = tonumber(redis.call('GET', gen_key)) or 0
	if current ~= want then
		return 0
	end

	if ttl_ms > 0 then
		redis.call('SET', key, payload, 'PX', ttl_ms)
	else
		redis.call('SET', key, payload)
	end
	return 1
`)

// GetDashboard returns the cached dashboard for date.
// Returns ErrCacheMiss if nothing is cached or the entry is for another day.
func (c *Cache) GetDashboard(ctx context.Context, date string) (*model.Dashboard, error) {
	raw, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return decodeDashboard(raw, date)
}

// DashboardGeneration returns the current invalidation generation.
// A key that was never bumped reads as 0.
func (c *Cache) DashboardGeneration(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, dashboardGenKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read dashboard generation: %w", err)
	}
	return gen, nil
}

// SetDashboard stores the dashboard for ttl if the generation is still gen.
// It reports false when an invalidation happened in between.
func (c *Cache) SetDashboard(ctx context.Context, d *model.Dashboard, gen int64, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("failed to encode dashboard: %w", err)
	}

	stored, err := setDashboardScript.Run(ctx, c.client,
		[]string{dashboardGenKey, dashboardKey},
		gen, raw, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache dashboard: %w", err)
	}
	return stored == 1, nil
}

// InvalidateDashboard bumps the generation and drops the cached dashboard.
func (c *Cache) InvalidateDashboard(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, dashboardGenKey)
		pipe.Del(ctx, dashboardKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate dashboard: %w", err)
	}
	return nil
}

func decodeDashboard(raw []byte, date string) (*model.Dashboard, error) {
	var d model.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode cached dashboard: %w", err)
	}
	if d.Today.Date != date {
		return nil, ErrCacheMiss
	}
	if d.EmployeeStats == nil {
		d.EmployeeStats = []model.EmployeePresence{}
	}
	return &d, nil
}
