package metrics

import (
	"time"

	"lattice-hq/hermes/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in the relay.
// It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// The collector owns a private registry, so tests can create collectors
// side by side without duplicate-registration panics.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Relay endpoint metrics
	relayMetrics *RelayMetrics

	// Upstream client metrics
	upstreamMetrics *UpstreamMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh private
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "hermes",
//		Subsystem: "relay",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "hermes"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "relay"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Streamed chat replies run long (100ms - 60s)
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	// Initialize metric subsystems
	c.relayMetrics = NewRelayMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed relay request.
//
// Parameters:
//   - route: Normalized endpoint name (e.g., "chat-process", "config")
//   - method: HTTP method
//   - status: HTTP status code of the response
//   - duration: Total request duration
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.RecordRequest(route, method, status, duration)
}

// StreamStarted marks a chat-process stream as active.
func (c *Collector) StreamStarted() {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.StreamStarted()
}

// StreamEnded marks a chat-process stream as finished.
func (c *Collector) StreamEnded() {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.StreamEnded()
}

// AddStreamChunks adds to the total count of stream chunks written.
func (c *Collector) AddStreamChunks(n int) {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.AddStreamChunks(n)
}

// RecordUpstreamRequest records one exchange with the upstream service.
//
// Parameters:
//   - mode: Upstream mode label ("ChatAPI" or "ReverseProxy")
//   - outcome: "success" or "error"
func (c *Collector) RecordUpstreamRequest(mode, outcome string) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.RecordRequest(mode, outcome)
}

// RecordUpstreamError records an upstream failure by HTTP status.
// Network-level failures with no status are recorded as 0.
func (c *Collector) RecordUpstreamError(statusCode int) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.RecordError(statusCode)
}

// SetUpstreamHealthy updates the upstream health gauge. It implements the
// probe's health recorder, so transitions flow straight into the metric.
func (c *Collector) SetUpstreamHealthy(healthy bool) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.SetHealthy(healthy)
}

// RecordBalanceFetch records a billing balance lookup.
//
// Parameters:
//   - outcome: "success" or "error"
func (c *Collector) RecordBalanceFetch(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.RecordBalanceFetch(outcome)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
