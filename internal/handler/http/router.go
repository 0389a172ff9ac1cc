package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig carries the values the router tags its request logs with.
type RouterConfig struct {
	AppName     string
	Version     string
	Env         string
	CORSOrigins []string
	LogLevel    slog.Level
}

type Handlers struct {
	Attendance AttendanceHandler
	Presence   PresenceHandler
	Report     ReportHandler
	Stream     StreamHandler
	Employee   EmployeeHandler
	Monitoring MonitoringHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", h.Attendance.Ingest)
		r.Get("/presence", h.Presence.Get)
		r.Get("/reports/attendance", h.Report.GetAttendanceReport)

		r.Route("/stream", func(r chi.Router) {
			r.Get("/", h.Stream.Stream)
			r.Get("/stats", h.Stream.Stats)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.Employee.List)
			r.Post("/refresh", h.Employee.Refresh)
			r.Post("/sync", h.Employee.Sync)
		})

		r.Route("/monitoring", func(r chi.Router) {
			r.Get("/", h.Monitoring.Status)
			r.Post("/start", h.Monitoring.Start)
			r.Post("/stop", h.Monitoring.Stop)
		})
		r.Post("/device/test", h.Monitoring.TestDevice)
	})
	return r
}
