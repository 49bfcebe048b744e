package metrics

import (
	"strconv"

	"lattice-hq/hermes/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks metrics for the upstream chat service client.
//
// Metrics:
//   - hermes_relay_upstream_requests_total: Exchanges by mode and outcome
//   - hermes_relay_upstream_errors_total: Upstream failures by HTTP status
//   - hermes_relay_upstream_healthy: Probe health (1=healthy, 0=unhealthy)
//   - hermes_relay_balance_fetch_total: Billing lookups by outcome
type UpstreamMetrics struct {
	// Exchanges with the upstream by mode and outcome
	requests *prometheus.CounterVec

	// Upstream failures by HTTP status ("0" for network errors)
	errors *prometheus.CounterVec

	// Probe health gauge (1=healthy, 0=unhealthy)
	healthy prometheus.Gauge

	// Billing balance lookups by outcome
	balanceFetches *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream exchanges by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream failures by HTTP status",
			},
			[]string{"status"},
		),

		healthy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_healthy",
				Help:      "Upstream probe health (1=healthy, 0=unhealthy)",
			},
		),

		balanceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "balance_fetch_total",
				Help:      "Total number of billing balance lookups by outcome",
			},
			[]string{"outcome"},
		),
	}

	// The upstream starts healthy until the probe says otherwise.
	um.healthy.Set(1)

	// Register all metrics
	registry.MustRegister(
		um.requests,
		um.errors,
		um.healthy,
		um.balanceFetches,
	)

	return um
}

// RecordRequest records one exchange with the upstream.
//
// Parameters:
//   - mode: Upstream mode label ("ChatAPI" or "ReverseProxy")
//   - outcome: "success" or "error"
func (um *UpstreamMetrics) RecordRequest(mode, outcome string) {
	um.requests.WithLabelValues(mode, outcome).Inc()
}

// RecordError records an upstream failure by HTTP status code.
// Use 0 for failures with no HTTP status (network errors, timeouts).
func (um *UpstreamMetrics) RecordError(statusCode int) {
	um.errors.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// SetHealthy updates the upstream health gauge.
func (um *UpstreamMetrics) SetHealthy(healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	um.healthy.Set(value)
}

// RecordBalanceFetch records a billing balance lookup.
//
// Parameters:
//   - outcome: "success" or "error"
func (um *UpstreamMetrics) RecordBalanceFetch(outcome string) {
	um.balanceFetches.WithLabelValues(outcome).Inc()
}
