// Package server assembles the relay's HTTP surface and manages its lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"lattice-hq/hermes/pkg/config"
	"lattice-hq/hermes/pkg/relay/handlers"
	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/telemetry/metrics"
	"lattice-hq/hermes/pkg/telemetry/tracing"
	"lattice-hq/hermes/pkg/upstream"
)

// Server is the HTTP relay server fronting the upstream chat service.
type Server struct {
	config       *config.Config
	httpServer   *http.Server
	client       upstream.Client
	prober       *upstream.Prober
	metrics      *metrics.Collector
	tracer       *tracing.Tracer
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer wires the relay endpoints onto a new server. The collector and
// tracer must be non-nil; both degrade to no-ops when their config disables
// them.
func NewServer(cfg *config.Config, client upstream.Client, prober *upstream.Prober, collector *metrics.Collector, tracer *tracing.Tracer) *Server {
	return &Server{
		config:       cfg,
		client:       client,
		prober:       prober,
		metrics:      collector,
		tracer:       tracer,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", s.config.Server.ListenAddress,
			"mode", s.client.Mode(),
			"static_dir", s.config.Server.StaticDir,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Set up signal handlers
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("relay server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Create handlers
	chatHandler := handlers.NewChatHandler(s.client, s.metrics, s.tracer)
	configHandler := handlers.NewConfigHandler(s.client, s.upstreamConfig, s.metrics)
	sessionHandler := handlers.NewSessionHandler(s.client, s.secretKey)
	verifyHandler := handlers.NewVerifyHandler(s.secretKey)

	// The auth wrapper covers the whole relay surface; its exemption table
	// keeps /session and /verify reachable without a key.
	auth := middleware.Auth(s.secretKey)

	s.mount(mux, "/chat-process", auth(chatHandler))
	s.mount(mux, "/config", auth(configHandler))
	s.mount(mux, "/session", auth(sessionHandler))
	s.mount(mux, "/verify", auth(verifyHandler))

	// Operational endpoints answer only at the root and skip the auth chain.
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.prober))
	if s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	// Everything else falls through to the web client's build output.
	if s.config.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.config.Server.StaticDir)))
	}

	// Apply middleware chain
	var handler http.Handler = mux

	// CORS middleware
	handler = middleware.CORS(s.convertCORSConfig())(handler)

	// Request ID middleware
	handler = middleware.RequestID(handler)

	// Logging middleware
	handler = middleware.Logging(handler)

	// Recovery middleware (outermost)
	handler = middleware.Recovery(handler)

	return handler
}

// mount registers a relay handler at both the bare path and under the /api
// prefix. Both mounts share one route label so per-endpoint metrics stay
// aggregated.
func (s *Server) mount(mux *http.ServeMux, route string, h http.Handler) {
	instrumented := s.metrics.InstrumentHandler(strings.TrimPrefix(route, "/"), h)
	mux.Handle(route, instrumented)
	mux.Handle("/api"+route, instrumented)
}

// secretKey reads the live secret key so a hot-reloaded value applies to new
// requests. It falls back to the startup snapshot when the singleton is not
// initialized.
func (s *Server) secretKey() string {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.Auth.SecretKey
	}
	return s.config.Auth.SecretKey
}

// upstreamConfig reads the live upstream section, keeping /config responses
// in step with reloaded values.
func (s *Server) upstreamConfig() config.UpstreamConfig {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.Upstream
	}
	return s.config.Upstream
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health performs a health check on the server.
func (s *Server) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}

	if !s.prober.Healthy() {
		return fmt.Errorf("upstream is unhealthy")
	}

	return nil
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		AllowedOrigins: s.config.Server.CORS.AllowedOrigins,
		AllowedMethods: s.config.Server.CORS.AllowedMethods,
		AllowedHeaders: s.config.Server.CORS.AllowedHeaders,
		MaxAge:         s.config.Server.CORS.MaxAge,
	}
}
