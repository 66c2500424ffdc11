package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"deliveryboard/internal/config"
	"deliveryboard/internal/confirmations"
	apierrors "deliveryboard/internal/errors"
	"deliveryboard/internal/exporter"
	"deliveryboard/internal/files"
	"deliveryboard/internal/infrastructure"
	customMiddleware "deliveryboard/internal/middleware"
	"deliveryboard/internal/services"
	handlers "deliveryboard/internal/transport/http"
	"deliveryboard/internal/watcher"
	ws "deliveryboard/internal/websocket"
	"deliveryboard/pkg/contracts"
	"deliveryboard/pkg/contracts/domain"
)

const (
	VERSION = "v" + contracts.Version
	AppName = "Delivery Board"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BoardMetrics
	ErrorHandler  *apierrors.ErrorHandler

	Store         confirmations.Store
	BoardService  *services.BoardService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	Watcher       *watcher.Watcher
	Scheduler     *services.Scheduler

	now func() time.Time
}

// Option customizes an Application before its services are built
type Option func(*Application)

// WithClock replaces time.Now for the board service
func WithClock(now func() time.Time) Option {
	return func(a *Application) { a.now = now }
}

// NewApplication loads the configuration and logger and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component around cfg. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	a := &Application{
		Config:       cfg,
		Logger:       logger,
		ErrorHandler: apierrors.NewErrorHandler(logger, false),
	}
	for _, opt := range opts {
		opt(a)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, VERSION), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	if err := a.initializeServices(); err != nil {
		_ = a.closeResources(context.Background())
		return nil, err
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices builds the store, board, hub, watcher and scheduler
func (a *Application) initializeServices() error {
	cfg := a.Config

	metrics, err := infrastructure.NewBoardMetrics(a.OTelProviders.Meter, a.bucketCounts)
	if err != nil {
		return fmt.Errorf("failed to create board metrics: %w", err)
	}
	a.Metrics = metrics

	store, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open confirmation store: %w", err)
	}
	a.Store = store

	hub := ws.NewHub(a.Logger, metrics)
	hub.Start()
	a.WebSocketHub = hub

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	dirs := cfg.ReportDirs()

	board, err := services.NewBoardService(services.BoardConfig{
		Dirs:           dirs,
		Encoding:       cfg.Reports.Encoding,
		MaxRecords:     cfg.Reports.MaxRecords,
		MaxFileBytes:   cfg.Reports.MaxFileBytes,
		CompactColumns: cfg.Reports.CompactColumns,
		Location:       loc,
	}, store,
		services.WithLogger(a.Logger),
		services.WithClock(a.now),
		services.WithNotifier(ws.NewNotifier(hub)),
		services.WithMetrics(metrics),
		services.WithDiscovery(files.NewDiscovery(cfg.Paths.DataDir)),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize board service: %w", err)
	}
	a.BoardService = board

	a.HealthService = services.NewHealthService(VERSION, BuildTime, BuildID, board, dirs, hub.ClientCount, a.Logger)

	if cfg.Reports.Watch {
		a.Watcher = watcher.New(dirs, cfg.Reports.Debounce, a.refreshOnChange, a.Logger)
	}

	scheduler, err := services.NewScheduler(board, cfg.Schedule.Refresh, cfg.Schedule.Reclassify, loc, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	a.Scheduler = scheduler

	return nil
}

// openStore opens the configured confirmation store
func openStore(cfg config.StoreConfig) (confirmations.Store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return confirmations.NewMemoryStore(), nil
	case config.StoreSQLite:
		return confirmations.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// bucketCounts feeds the board_records gauge
func (a *Application) bucketCounts() map[domain.RecordKind]map[domain.Bucket]int {
	if a.BoardService == nil {
		return nil
	}
	return a.BoardService.State().Counts()
}

// refreshOnChange is the watcher trigger. Failures are already logged and
// broadcast by the board service.
func (a *Application) refreshOnChange(kind domain.RecordKind) {
	ctx := infrastructure.WithTraceID(context.Background(), infrastructure.GenerateTraceID())
	a.Logger.DebugContext(ctx, "Report change detected", slog.String("kind", string(kind)))
	_, _ = a.BoardService.Refresh(ctx, kind)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// These don't wrap the ResponseWriter and are safe for the upgrade
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.allowedOrigins(), a.ErrorHandler, a.Logger)
	r.Handle("/ws", wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			handlers.NewBoardHandler(a.BoardService, exporter.NewBoardExporter(a.Logger), a.Logger, a.ErrorHandler).Register(r)
			handlers.NewHealthHandler(a.HealthService, a.Logger).Register(r)

			r.NotFound(a.ErrorHandler.NotFound)
			r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)
		})

		r.With(customMiddleware.Compress(5)).Handle("/*", handlers.StaticHandler(a.Config.Paths.WebDir))
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// allowedOrigins lists the origins accepted by CORS and the WebSocket upgrader
func (a *Application) allowedOrigins() []string {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS {
		origins = append(origins, a.Config.Security.AllowedOrigins...)
	}
	return origins
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// StartBackground loads the boards once and starts the watcher and
// scheduler. It does not start the HTTP server.
func (a *Application) StartBackground(ctx context.Context) error {
	// A missing or broken report leaves that board empty until the next trigger
	if err := a.BoardService.RefreshAll(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Initial refresh incomplete", slog.String("error", err.Error()))
	}

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
	}
	a.Scheduler.Start()
	return nil
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("data_dir", a.Config.Paths.DataDir),
		slog.String("web_dir", a.Config.Paths.WebDir),
		slog.String("logs_dir", a.Config.Paths.LogsDir),
		slog.String("reservations_dir", a.Config.Reports.ReservationsDir),
		slog.String("requisitions_dir", a.Config.Reports.RequisitionsDir),
		slog.String("store", a.Config.Store.Driver))

	if err := a.StartBackground(ctx); err != nil {
		return err
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if err := a.closeResources(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// closeResources stops the background components and releases the store
// and telemetry. Components that were never built are skipped.
func (a *Application) closeResources(ctx context.Context) error {
	var errs []error

	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}
	if a.Watcher != nil {
		if err := a.Watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("watcher stop: %w", err))
		}
	}
	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	if a.Metrics != nil {
		if err := a.Metrics.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metrics close: %w", err))
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		_ = a.Stop(context.Background())
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
