package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/enterprise/ga-view-proxy/internal/analytics"
	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/enterprise/ga-view-proxy/internal/secrets"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Version is reported by /health and attached to the trace resource
var Version = "dev"

// Application is the local server hosting both report endpoints
type Application struct {
	config *config.Config
	logger *logrus.Logger

	provider secrets.Provider
	factory  analytics.Factory
	handlers *Handlers
	registry *prometheus.Registry

	// HTTP server
	router     *mux.Router
	httpServer *http.Server

	// Observability
	tracerProvider *trace.TracerProvider

	// State management
	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// Option customises an Application
type Option func(*Application)

// WithSecrets replaces the provider built from the secrets config
func WithSecrets(provider secrets.Provider) Option {
	return func(a *Application) {
		a.provider = provider
	}
}

// WithAnalyticsFactory replaces the Google Analytics client factory
func WithAnalyticsFactory(factory analytics.Factory) Option {
	return func(a *Application) {
		a.factory = factory
	}
}

// New creates a new application instance
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts ...Option) (*Application, error) {
	app := &Application{
		config:   cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(app)
	}

	// Initialize observability
	if err := app.initializeObservability(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if app.provider == nil {
		provider, err := secrets.New(cfg.Secrets)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
		}
		app.provider = provider
	}
	if app.factory == nil {
		app.factory = analytics.NewGAClientFactory(cfg.Analytics.Timeout)
	}

	app.handlers = NewHandlers(cfg, app.provider, app.factory, app.registry, logger)

	app.initializeHTTPServer()

	return app, nil
}

// Handler returns the router serving all endpoints
func (a *Application) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server in the background
func (a *Application) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return errors.New("application already running")
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.startHTTPServer()
	}()

	a.running = true
	a.logger.WithField("view_configured", a.config.Analytics.ViewID != "").Info("Application started successfully")

	return nil
}

// Stop stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	a.logger.Info("Stopping application")

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("Failed to shutdown HTTP server")
	}

	// Shutdown observability
	a.shutdownObservability(ctx)

	a.wg.Wait()
	a.logger.Info("Application stopped")

	return nil
}

// initializeObservability sets up tracing and the process collectors
func (a *Application) initializeObservability(ctx context.Context) error {
	if a.config.Metrics.Enabled {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if !a.config.Tracing.Enabled {
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(a.config.Tracing.ServiceName),
			semconv.ServiceVersion(Version),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return a.initializeTracing(res)
}

// initializeTracing sets up OpenTelemetry tracing
func (a *Application) initializeTracing(res *resource.Resource) error {
	// Create Jaeger exporter
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(a.config.Tracing.Endpoint)))
	if err != nil {
		return fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	// Create tracer provider
	a.tracerProvider = trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(a.config.Tracing.SampleRate))),
	)

	// Set global tracer provider
	otel.SetTracerProvider(a.tracerProvider)

	a.logger.WithField("endpoint", a.config.Tracing.Endpoint).Info("Tracing initialized")
	return nil
}

// initializeHTTPServer sets up the HTTP server with routes
func (a *Application) initializeHTTPServer() {
	router := mux.NewRouter()

	// Report endpoints answer preflight themselves, so OPTIONS is routed too.
	router.Handle("/gaViewOriginData", a.handlers.Origin).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	router.Handle("/gaViewAdData", a.handlers.Ad).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)

	// Health and metrics endpoints
	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ready", a.handleReady).Methods(http.MethodGet)
	if a.config.Metrics.Enabled {
		router.Handle(a.config.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	a.router = router
	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}
}

// startHTTPServer starts the HTTP server
func (a *Application) startHTTPServer() {
	a.logger.WithField("address", a.httpServer.Addr).Info("Starting HTTP server")

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.WithError(err).Error("HTTP server failed")
	}
}

// shutdownObservability shuts down observability components
func (a *Application) shutdownObservability(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Error("Failed to shutdown tracer provider")
		}
	}
}

// handleHealth handles health checks
func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"reports":   []string{a.handlers.Origin.Kind().String(), a.handlers.Ad.Kind().String()},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		a.logger.WithError(err).Warn("Failed to write health response")
	}
}

// handleReady reports ready once the server runs and a view is configured
func (a *Application) handleReady(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	running := a.running
	a.mu.RUnlock()

	if !running {
		http.Error(w, "Service not ready", http.StatusServiceUnavailable)
		return
	}
	if a.config.Analytics.ViewID == "" {
		http.Error(w, "GA_VIEW_ID not set", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	}); err != nil {
		a.logger.WithError(err).Warn("Failed to write readiness response")
	}
}
