// Package telemetry groups the observability subpackages of the relay.
//
// # Components
//
//   - logging: log/slog setup with credential redaction
//   - metrics: Prometheus collection behind a private registry
//   - tracing: optional OpenTelemetry OTLP export
//
// There is no facade type; each subpackage is wired independently at startup
// and handed to the components that use it:
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//
// The upstream health probe reports into the collector through its recorder
// interface, and the server mounts the collector's handler on the configured
// metrics path. Logging is always on; metrics default on; tracing defaults
// off and costs a noop call when disabled.
package telemetry
