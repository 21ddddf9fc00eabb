// Package router assembles the chi router for the HR API.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hrmslite/hrmslite/internal/config"
	"github.com/hrmslite/hrmslite/internal/handler"
	"github.com/hrmslite/hrmslite/internal/metrics"
	"github.com/hrmslite/hrmslite/internal/middleware"
	"github.com/hrmslite/hrmslite/internal/service"
)

// Deps are the collaborators the router wires into handlers.
// Limiter and Snapshotter may be nil.
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Employees   *service.EmployeeService
	Attendance  *service.AttendanceService
	Dashboard   *service.DashboardService
	Health      *handler.HealthHandler
	Limiter     middleware.IPLimiter
	Metrics     metrics.Recorder
	Snapshotter metrics.Snapshotter
}

// New configures the chi router with all routes and middleware.
func New(d Deps) *chi.Mux {
	cfg := d.Config
	logger := d.Logger

	h := handler.New(logger)
	employees := handler.NewEmployeeHandler(d.Employees)
	attendance := handler.NewAttendanceHandler(d.Attendance, d.Dashboard)
	metricsHandler := handler.NewMetricsHandler(d.Snapshotter)
	wrap := func(fn handler.APIFunc) http.HandlerFunc {
		return handler.Wrap(logger, fn)
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", h.Root)
	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
		r.Get("/readyz", d.Health.Readyz)
	}
	r.Get("/metrics", metricsHandler.Metrics)

	rateLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: d.Limiter,
		Metrics: d.Metrics,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", wrap(employees.List))
			r.Post("/", wrap(employees.Create))
			r.Get("/{id}/", wrap(employees.Get))
			r.Delete("/{id}/", wrap(employees.Delete))
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", wrap(attendance.List))
			r.Post("/", wrap(attendance.Mark))
			r.Get("/employee/{id}/", wrap(attendance.History))
			r.Get("/dashboard/", wrap(attendance.Dashboard))
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
