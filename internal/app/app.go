// Package app wires the application together: configuration, logging,
// metrics, the report service, the HTTP router, and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesdash/internal/config"
	"salesdash/internal/infrastructure"
	"salesdash/internal/middleware"
	"salesdash/internal/services"
	transport "salesdash/internal/transport/http"
)

// Application is the assembled service.
type Application struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	service *services.ReportService
	server  *http.Server
}

// New loads configuration and builds the application.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	set, err := config.LoadReportSet(cfg.Reports)
	if err != nil {
		return nil, fmt.Errorf("load report definitions: %w", err)
	}

	metrics := infrastructure.NewMetrics()
	service := services.NewReportService(cfg.Reports, set, logger, metrics)

	app := &Application{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		service: service,
	}
	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(a.cfg.Server.WriteTimeout))
	if a.cfg.Server.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(a.cfg.Server.RateLimit.RPS, a.cfg.Server.RateLimit.Burst, a.logger)
		r.Use(rl.Handler)
	}

	handler := transport.NewReportHandler(a.service, a.cfg.Reports, a.logger)
	r.Mount("/api", handler.Routes())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}))

	return r
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", slog.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
