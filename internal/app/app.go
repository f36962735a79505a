package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"marketdash/internal/config"
	"marketdash/internal/dataset"
	apierrors "marketdash/internal/errors"
	"marketdash/internal/infrastructure"
	custommw "marketdash/internal/middleware"
	"marketdash/internal/services"
	handlers "marketdash/internal/transport/http"
)

const (
	// Version is the application version reported by the health endpoint
	Version = "1.0.0"
	// AppName is the human-facing application name
	AppName = "marketdash - News & Stock Dashboard"
)

// Application is the dependency container: configuration, logger,
// loaded datasets, services, and the HTTP server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *infrastructure.Metrics
	Loader    *dataset.Loader
	Dashboard *services.DashboardService
	Router    *chi.Mux
	Server    *http.Server
}

// NewApplication wires the application: loads configuration, initializes
// logging and metrics, reads the two workbooks once (failures degrade to
// empty tables with a surfaced message), and assembles the router.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	a := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
		Loader:  dataset.NewLoader(logger),
	}

	ctx := context.Background()
	news := loadSource(ctx, a.Loader, "news", cfg.Data.NewsPath())
	stocks := loadSource(ctx, a.Loader, "stocks", cfg.Data.StocksPath())

	a.Dashboard = services.NewDashboardService(logger, news, stocks)

	a.setupRouter()
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

// loadSource reads one workbook through the memoizing loader. A failed
// load still yields a usable source: empty table plus the message every
// view response carries.
func loadSource(ctx context.Context, loader *dataset.Loader, name, path string) services.Source {
	table, err := loader.Load(ctx, path)
	src := services.Source{Name: name, Table: table}
	if err != nil {
		src.LoadError = fmt.Sprintf("Failed to load %s: %v", path, err)
	}
	return src
}

// setupRouter assembles the middleware chain and mounts the handlers
func (a *Application) setupRouter() {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	errorMiddleware := apierrors.NewErrorMiddleware(errorHandler, a.Logger)

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(errorMiddleware.Handler)
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(custommw.Instrument(a.Metrics))

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger, errorHandler, a.Metrics)
	healthHandler := handlers.NewHealthHandler(a.Dashboard, a.Logger, Version)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", dashboardHandler.Routes())
	})
	r.Method(http.MethodGet, "/healthz", healthHandler)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, apierrors.ErrNotFound)
	})

	a.Router = r
}

// Start starts the HTTP server without blocking
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
