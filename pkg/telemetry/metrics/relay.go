package metrics

import (
	"strconv"
	"time"

	"lattice-hq/hermes/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics tracks metrics for the relay HTTP endpoints.
//
// Metrics:
//   - hermes_relay_requests_total: Total request count by route, method, status
//   - hermes_relay_request_duration_seconds: Request duration histogram by route
//   - hermes_relay_active_streams: Currently open chat-process streams
//   - hermes_relay_stream_chunks_total: Total chunks written to streams
type RelayMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Currently open chat-process streams
	activeStreams prometheus.Gauge

	// Total chunks written across all streams
	streamChunksTotal prometheus.Counter
}

// NewRelayMetrics creates and registers relay metrics with the provided registry.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of relay requests processed",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of relay requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route"},
		),

		activeStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_streams",
				Help:      "Number of chat-process streams currently open",
			},
		),

		streamChunksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_chunks_total",
				Help:      "Total number of chunks written to chat-process streams",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.activeStreams,
		rm.streamChunksTotal,
	)

	return rm
}

// RecordRequest records metrics for a completed relay request.
//
// Parameters:
//   - route: Normalized endpoint name
//   - method: HTTP method
//   - status: HTTP status code
//   - duration: Request duration
func (rm *RelayMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// StreamStarted increments the active stream gauge.
func (rm *RelayMetrics) StreamStarted() {
	rm.activeStreams.Inc()
}

// StreamEnded decrements the active stream gauge.
func (rm *RelayMetrics) StreamEnded() {
	rm.activeStreams.Dec()
}

// AddStreamChunks adds to the total chunk counter.
func (rm *RelayMetrics) AddStreamChunks(n int) {
	if n > 0 {
		rm.streamChunksTotal.Add(float64(n))
	}
}
