// Package metrics provides Prometheus metrics collection for the relay.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring relay
// endpoint traffic, the chat-process stream, and the upstream chat service.
// A Collector owns a private registry, so instances never collide on
// registration.
//
// # Metrics Categories
//
//   - Relay Metrics: Request count, duration, active streams, chunk totals
//   - Upstream Metrics: Exchange outcomes, error statuses, probe health, balance lookups
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(cfg, nil)
//
//	// Record endpoint metrics
//	collector.RecordRequest("chat-process", "POST", 200, duration)
//
//	// Track a stream
//	collector.StreamStarted()
//	defer collector.StreamEnded()
//	collector.AddStreamChunks(12)
//
//	// Record upstream metrics
//	collector.RecordUpstreamRequest("ChatAPI", "success")
//	collector.RecordUpstreamError(502)
//	collector.SetUpstreamHealthy(true)
//
// # Exposition
//
// Metrics are exposed via the promhttp handler:
//
//	http.Handle("/metrics", collector.Handler())
//
// All metric names carry the configured namespace and subsystem, for example
// hermes_relay_requests_total.
//
// # Integration
//
// The Collector satisfies the upstream prober's health recorder, so probe
// transitions update the hermes_relay_upstream_healthy gauge without glue
// code. HTTP handlers are instrumented with InstrumentHandler, which labels
// every request with a normalized route name.
//
// # Thread Safety
//
// All collector operations are thread-safe and designed for concurrent use
// from request handlers.
package metrics
