// Package app wires the dashboard server together: configuration,
// logging, telemetry, services, routes and lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gorillaws "github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/middleware"
	"retailpulse/internal/services"
	transport "retailpulse/internal/transport/http"
	"retailpulse/internal/websocket"
)

// Application is the fully wired dashboard server.
type Application struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	otelProviders *infrastructure.OTelProviders
	metrics       *infrastructure.BusinessMetrics

	hub           *websocket.Hub
	dataService   *services.DataService
	exportService *services.ExportService
	healthService *services.HealthService
	errorHandler  *apierrors.ErrorHandler

	server   *http.Server
	upgrader gorillaws.Upgrader
}

// New builds the application from configuration. The cleaned dataset is
// loaded if it exists; otherwise the server starts unready and waits
// for the ETL to produce it.
func New(cfg *config.Config) (*Application, error) {
	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to prepare directories: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution()

	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	var metrics *infrastructure.BusinessMetrics
	if otelProviders.Meter != nil {
		metrics, err = infrastructure.CreateBusinessMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metric instruments: %w", err)
		}
	}

	hub := websocket.NewHub(logger)

	dataService := services.NewDataService(cfg.Analytics, paths, hub, metrics, logger)
	exportService := services.NewExportService(
		dataService,
		exporter.NewCSVWriter(paths),
		exporter.NewExcelWriter(logger),
		metrics,
		logger,
	)
	healthService := services.NewHealthService(dataService, paths)

	app := &Application{
		cfg:           cfg,
		paths:         paths,
		logger:        logger,
		otelProviders: otelProviders,
		metrics:       metrics,
		hub:           hub,
		dataService:   dataService,
		exportService: exportService,
		healthService: healthService,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.Security.AllowedOrigins),
		},
	}

	app.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	if config.FileExists(paths.CleanedFile) {
		if err := dataService.Load(context.Background()); err != nil {
			logger.Warn("failed to load cleaned dataset at startup",
				slog.String("path", paths.CleanedFile),
				slog.String("error", err.Error()))
		}
	} else {
		logger.Warn("cleaned dataset not found, starting unready",
			slog.String("path", paths.CleanedFile))
	}

	return app, nil
}

// router assembles the chi route tree.
func (a *Application) router() chi.Router {
	dataHandler := transport.NewDataHandler(a.dataService, a.logger, a.errorHandler)
	exportHandler := transport.NewExportHandler(a.exportService, a.logger, a.errorHandler)
	healthHandler := transport.NewHealthHandler(a.healthService, a.logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.SecurityHeaders)
	if a.cfg.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: a.cfg.Security.AllowedOrigins,
			Logger:         a.logger,
		}))
	}
	if a.cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(a.cfg.Security.RateLimit.RPS, a.cfg.Security.RateLimit.Burst, a.logger)
		r.Use(limiter.Handler)
	}
	if a.metrics != nil {
		r.Use(a.httpMetrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.cfg.Server.WriteTimeout, a.logger))
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", transport.Version)
			r.Mount("/data", dataHandler.Routes())
			r.Post("/reload", dataHandler.Reload)
		})

		// Exports stream whole views and get a wider budget.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.cfg.Server.ExportTimeout, a.logger))
			r.Mount("/export", exportHandler.Routes())
		})
	})

	r.Get("/ws", a.handleWebSocket)

	if a.otelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.otelProviders.PrometheusHTTP)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	return r
}

// httpMetrics records request counts, latency and in-flight gauge.
func (a *Application) httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		a.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer a.metrics.HTTPActiveRequests.Add(ctx, -1)

		next.ServeHTTP(w, r)

		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("path", r.URL.Path),
		)
		a.metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		a.metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	})
}

// handleWebSocket upgrades the connection and hands it to the hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its own error response.
		a.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := websocket.NewClient(a.hub, conn, a.logger)
	client.Register()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if candidate == "*" || candidate == origin {
				return true
			}
		}
		return false
	}
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// everything down in order.
func (a *Application) Run(ctx context.Context) error {
	a.hub.Start()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening",
			slog.String("addr", a.server.Addr),
			slog.String("version", infrastructure.ServiceVersion))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}

	a.hub.Shutdown()

	if err := a.otelProviders.Shutdown(shutdownCtx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing log file: %w", err)
	}

	return firstErr
}
