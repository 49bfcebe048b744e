// Package server assembles the relay's HTTP surface and manages its lifecycle.
//
// This package ties together the relay handlers and middleware and provides
// server lifecycle management including start, shutdown, and health checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Serves the built web client alongside the API
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "lattice-hq/hermes/pkg/config"
//	    "lattice-hq/hermes/pkg/server"
//	    "lattice-hq/hermes/pkg/telemetry/metrics"
//	    "lattice-hq/hermes/pkg/telemetry/tracing"
//	    "lattice-hq/hermes/pkg/upstream"
//	)
//
//	cfg, err := config.LoadConfigWithEnvOverrides(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := upstream.NewClient(cfg.Upstream, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	prober := upstream.NewProber(client, cfg.Upstream.Probe, slog.Default(), collector)
//
//	srv := server.NewServer(cfg, client, prober, collector, tracer)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving SIGTERM
// or SIGINT:
//
//	// Server will automatically shutdown on SIGTERM/SIGINT
//	// Or you can trigger shutdown programmatically:
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Forces connection closure if timeout exceeded
//  4. Cleans up resources
//
// # Routes
//
// Every relay endpoint is registered twice, at the bare path and under the
// /api prefix, because deployed front-ends are split on which one they call:
//
//   - POST /chat-process, /api/chat-process - Streamed chat relay
//   - POST /config, /api/config - Runtime configuration snapshot
//   - POST /session, /api/session - Auth requirement and active mode
//   - POST /verify, /api/verify - Secret-key verification
//
// Operational endpoints answer only at the root:
//
//   - GET /health - Liveness probe (always returns 200)
//   - GET /ready - Readiness probe (follows upstream probe state)
//   - GET /metrics - Prometheus metrics (when enabled)
//
// Any other path is served from the configured static directory, which holds
// the web client's build output.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Auth: Enforce the secret-key check on protected endpoints
//  2. CORS: Adds Cross-Origin Resource Sharing headers
//  3. RequestID: Generates unique request ID for tracing
//  4. Logging: Logs request/response details
//  5. Recovery: Recovers from panics and returns 500 error
//
// There is no whole-request timeout wrapper; a chat stream regularly outlives
// any fixed handler deadline, so the upstream timeout is enforced per call
// inside the chat handler.
//
// # Health Checks
//
// The server provides health check endpoints for Kubernetes/load balancers:
//
//	# Liveness probe (is server running?)
//	GET /health
//
//	# Readiness probe (is the upstream reachable?)
//	GET /ready
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
