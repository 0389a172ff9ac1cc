package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	appAWS "github.com/cmlabs-hris/attendance-engine/internal/pkg/aws"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/hikvision"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/telemetry"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/mongodb"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	notificationService "github.com/cmlabs-hris/attendance-engine/internal/service/notification"
	presenceService "github.com/cmlabs-hris/attendance-engine/internal/service/presence"
	reportService "github.com/cmlabs-hris/attendance-engine/internal/service/report"
)

const (
	appName    = "attendance-engine"
	appVersion = "v1.0.0"
)

type stores struct {
	events    attendance.EventRepository
	employees employee.EmployeeRepository
	snapshots presence.SnapshotRepository
	close     func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(appName, telemetry.Config{
		Endpoint: cfg.Telemetry.Endpoint,
		Insecure: cfg.Telemetry.Insecure,
	})
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	settings, err := scheduleSettings(cfg.Schedule)
	if err != nil {
		return err
	}
	patterns, err := schedule.DefaultTable(settings)
	if err != nil {
		return fmt.Errorf("build schedule table: %w", err)
	}

	// Device
	var (
		deviceClient *hikvision.Client
		userSource   employee.UserSource
	)
	if cfg.Device.Host != "" {
		deviceClient = hikvision.NewClient(hikvision.Config{
			Host:     cfg.Device.Host,
			Username: cfg.Device.Username,
			Password: cfg.Device.Password,
		})
		userSource = employeeService.NewDeviceUserSource(deviceClient)
	}

	// Services
	ledger := presenceService.NewLedger()
	directory := employeeService.NewDirectoryService(st.employees, userSource, ledger)
	dispatcher := notificationService.NewDispatcher(sse.NewHub(cfg.Notify.QueueSize))

	normalizer := attendanceService.NewNormalizer(cfg.Ingest.ClockSkew, loc)
	lastSeq, err := st.events.MaxSequence(ctx)
	if err != nil {
		return fmt.Errorf("read last sequence number: %w", err)
	}
	normalizer.Seed(lastSeq)

	ingest := attendanceService.NewIngestService(normalizer, st.events, directory, ledger, dispatcher, cfg.Ingest.DuplicateWindow)
	presenceSvc := presenceService.NewPresenceService(ledger, directory, st.events, st.snapshots, loc)
	reports := reportService.NewReportService(st.events, directory, patterns, loc, cfg.Report.MaxRangeDays)

	if err := presenceSvc.Restore(ctx); err != nil {
		return fmt.Errorf("restore presence: %w", err)
	}
	slog.Info("Presence restored", "last_sequence_no", lastSeq)

	var (
		monitor       *hikvision.Monitor
		deviceMonitor appHTTP.DeviceMonitor
		deviceProber  appHTTP.DeviceProber
	)
	if deviceClient != nil {
		bridge := attendanceService.NewDeviceBridge(ingest, ledger, directory, dispatcher, loc)
		monitor = hikvision.NewMonitor(deviceClient, bridge.HandleAccessEvent)
		presenceSvc.SetEventSource(monitor)
		deviceMonitor = monitor
		deviceProber = deviceClient
	}

	scheduler := cron.NewScheduler()
	cron.RegisterJobs(scheduler, presenceSvc, directory, cfg.Directory.RefreshInterval)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:     appName,
		Version:     appVersion,
		Env:         cfg.App.Env,
		CORSOrigins: cfg.App.CORSOrigins,
		LogLevel:    parseLevel(cfg.App.LogLevel),
	}, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(ingest),
		Presence:   appHTTP.NewPresenceHandler(presenceSvc),
		Report:     appHTTP.NewReportHandler(reports),
		Stream:     appHTTP.NewStreamHandler(dispatcher),
		Employee:   appHTTP.NewEmployeeHandler(directory),
		Monitoring: appHTTP.NewMonitoringHandler(deviceMonitor, deviceProber),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           otelhttp.NewHandler(router, appName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if monitor != nil {
		g.Go(func() error {
			return monitor.Run(gctx, cfg.Device.AutoStart)
		})
	}

	if cfg.Notify.SQSQueueURL != "" {
		sqsClient, err := appAWS.NewSQSClient(ctx, cfg.AWS)
		if err != nil {
			return fmt.Errorf("create sqs client: %w", err)
		}
		forwarder := notificationService.NewSQSForwarder(sqsClient, cfg.Notify.SQSQueueURL, dispatcher)
		g.Go(func() error {
			return forwarder.Run(gctx)
		})
	}

	err = g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if flushErr := presenceSvc.Flush(flushCtx); flushErr != nil {
		slog.Error("Final presence snapshot flush failed", "error", flushErr)
	}

	slog.Info("Server stopped")
	return err
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return stores{}, fmt.Errorf("connect to database: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		return stores{
			events:    postgresql.NewClockEventRepository(db),
			employees: postgresql.NewEmployeeRepository(db),
			snapshots: postgresql.NewPresenceSnapshotRepository(db),
			close:     db.Close,
		}, nil

	case "mongodb":
		db, err := mongodb.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return stores{}, err
		}
		events, err := mongodb.NewClockEventStore(ctx, db)
		if err != nil {
			_ = db.Close(context.Background())
			return stores{}, err
		}
		return stores{
			events:    events,
			employees: mongodb.NewEmployeeStore(db),
			snapshots: mongodb.NewPresenceSnapshotStore(db),
			close: func() {
				if err := db.Close(context.Background()); err != nil {
					slog.Warn("MongoDB disconnect failed", "error", err)
				}
			},
		}, nil

	default:
		slog.Warn("Using in-memory storage, data is lost on restart")
		return stores{
			events:    memory.NewClockEventRepository(),
			employees: memory.NewEmployeeRepository(),
			snapshots: memory.NewPresenceSnapshotRepository(),
			close:     func() {},
		}, nil
	}
}

func scheduleSettings(c config.ScheduleConfig) (schedule.Settings, error) {
	entry, err := schedule.ParseTimeOfDay(c.NormalEntry)
	if err != nil {
		return schedule.Settings{}, fmt.Errorf("SCHEDULE_NORMAL_ENTRY: %w", err)
	}
	exit, err := schedule.ParseTimeOfDay(c.NormalExit)
	if err != nil {
		return schedule.Settings{}, fmt.Errorf("SCHEDULE_NORMAL_EXIT: %w", err)
	}

	settings := schedule.Settings{
		NormalEntry:         entry,
		NormalExit:          exit,
		ToleranceMinutes:    c.ToleranceMinutes,
		ExtendedAltCloseDay: c.ExtendedAltCloseDay,
	}
	if c.ExtendedAltClose != "" {
		alt, err := schedule.ParseTimeOfDay(c.ExtendedAltClose)
		if err != nil {
			return schedule.Settings{}, fmt.Errorf("SCHEDULE_EXTENDED_ALT_CLOSE: %w", err)
		}
		settings.ExtendedAltClose = &alt
	}
	return settings, nil
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.App.LogLevel)}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
