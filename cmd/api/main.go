// Package main is the entrypoint for the HRMS Lite API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/hrmslite/hrmslite/internal/cache"
	"github.com/hrmslite/hrmslite/internal/config"
	"github.com/hrmslite/hrmslite/internal/events"
	"github.com/hrmslite/hrmslite/internal/handler"
	"github.com/hrmslite/hrmslite/internal/metrics"
	"github.com/hrmslite/hrmslite/internal/repository"
	"github.com/hrmslite/hrmslite/internal/repository/mongostore"
	"github.com/hrmslite/hrmslite/internal/repository/pgstore"
	"github.com/hrmslite/hrmslite/internal/router"
	"github.com/hrmslite/hrmslite/internal/server"
	"github.com/hrmslite/hrmslite/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid time zone", "error", err)
		os.Exit(1)
	}

	store, storeURL, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error(
			"failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", sanitizeError(err, storeURL)),
			slog.String("url", redactURL(storeURL)),
		)
		os.Exit(1)
	}
	logger.Info("store configured", "driver", cfg.StoreDriver)

	recorder := metrics.NewInMemory()
	opts := service.Options{
		DashboardTTL: cfg.DashboardCacheTTL,
		Metrics:      recorder,
		Logger:       logger,
		Location:     loc,
	}

	// Redis is optional. Without it the dashboard is computed on every
	// request, rate limiting is off and no events are emitted.
	var cacheClient *cache.Cache
	var publisher *events.Publisher
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn(
				"Redis unavailable, continuing without cache",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			cacheClient = nil
		} else {
			logger.Info("connected to Redis")
			opts.Cache = cacheClient
			if cfg.EventsEnabled {
				publisher = events.NewPublisher(cacheClient.Client(), logger, recorder)
				opts.Events = publisher
			}
		}
	}

	deps := router.Deps{
		Config:      cfg,
		Logger:      logger,
		Employees:   service.NewEmployeeService(store, opts),
		Attendance:  service.NewAttendanceService(store, opts),
		Dashboard:   service.NewDashboardService(store, opts),
		Metrics:     recorder,
		Snapshotter: recorder,
	}
	if cacheClient != nil {
		deps.Limiter = cacheClient
		deps.Health = handler.NewHealthHandler(cfg.StoreDriver, store, cacheClient)
	} else {
		deps.Health = handler.NewHealthHandler(cfg.StoreDriver, store, nil)
	}

	srv := server.New(router.New(deps), server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("store", store.Close)
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}
	if publisher != nil {
		srv.OnShutdown("events", publisher.Drain)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"timezone", loc.String(),
		"dashboard_cache_ttl", cfg.DashboardCacheTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore builds the configured document store and returns the URL it
// was built from for redacted logging. The mongo gateway connects lazily;
// a failed startup ping is only logged.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, string, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		gw := mongostore.New(cfg.MongoURI, cfg.MongoName)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := gw.Ping(pingCtx); err != nil {
			slog.Warn("mongo not reachable yet, will retry on first request",
				"error", sanitizeError(err, cfg.MongoURI))
		}
		return gw, cfg.MongoURI, nil
	case config.DriverPostgres:
		st, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cfg.DatabaseURL, err
		}
		return st, cfg.DatabaseURL, nil
	default:
		return nil, "", fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "hrms-lite")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
