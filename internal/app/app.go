package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/market-inbox/internal/config"
	httpcontroller "github.com/vadim/market-inbox/internal/controller/http"
	"github.com/vadim/market-inbox/internal/database"
	"github.com/vadim/market-inbox/internal/domain/inbox/dao"
	"github.com/vadim/market-inbox/internal/domain/inbox/scheduler"
	"github.com/vadim/market-inbox/internal/domain/inbox/service"
	"github.com/vadim/market-inbox/internal/domain/inbox/viewer"
	"github.com/vadim/market-inbox/internal/httpx/upstream/marketplace"
	"github.com/vadim/market-inbox/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	pg       *pgxpool.Pool
	archive  *dao.ArchivePostgres
	registry *viewer.Registry
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(30 * time.Second))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	// Register routes
	app.registerRoutes()

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure initializes the optional event-archive database
func (a *App) initInfrastructure(ctx context.Context) error {
	if a.cfg.Database.PostgresDSN == "" {
		a.logger.Info("event archive disabled: no database configured")
		return nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Database.PostgresDSN, database.PoolConfig{
		MaxConns: a.cfg.Database.MaxConns,
		MinConns: a.cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	a.pg = pool
	a.archive = dao.NewArchivePostgres(pool)
	return nil
}

// initDomains initializes the inbox domain: backend client, fetch
// service, and viewer registry
func (a *App) initDomains(ctx context.Context) error {
	backend := marketplace.New(
		marketplace.WithBaseURL(a.cfg.Backend.BaseURL),
		marketplace.WithAPIToken(a.cfg.Backend.APIToken),
		marketplace.WithHTTPClient(&http.Client{Timeout: a.cfg.Backend.Timeout}),
	)

	opts := []service.Option{
		service.WithProfiles(backend),
	}

	if a.archive != nil {
		opts = append(opts, service.WithArchive(a.archive))
	}

	if a.cfg.S3.Enabled {
		mirror, err := storage.NewAvatarMirror(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("initializing avatar mirror: %w", err)
		}
		opts = append(opts, service.WithAvatarMirror(mirror))
	}

	svc := service.New(backend, a.logger, opts...)

	a.registry = viewer.NewRegistry(svc, scheduler.Config{
		InboxInterval:      a.cfg.Poll.InboxInterval,
		TranscriptInterval: a.cfg.Poll.TranscriptInterval,
	}, a.cfg.Poll.ViewerTTL, a.logger)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("Market Inbox API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		viewerHandler := httpcontroller.NewViewerHandler(a.registry)
		viewerHandler.RegisterRoutes(r)

		var archive httpcontroller.ArchiveReader
		if a.archive != nil {
			archive = a.archive
		}
		statsHandler := httpcontroller.NewStatisticsHandler(archive)
		statsHandler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if a.pg != nil {
		if err := a.pg.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start the idle-viewer janitor
	a.registry.StartJanitor(ctx, a.cfg.Poll.JanitorInterval)

	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Tear down every open viewer session; this stops all polling loops.
	a.registry.CloseAll()

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.pg != nil {
		a.pg.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}
