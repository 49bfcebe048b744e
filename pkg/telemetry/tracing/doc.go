// Package tracing provides OpenTelemetry distributed tracing for the relay.
//
// # Overview
//
// The tracing package wraps the OpenTelemetry SDK behind a small Tracer type:
// OTLP/gRPC export, configurable sampling, W3C Trace Context propagation, and
// a noop mode that keeps the call sites unchanged when tracing is off.
//
// The relay opens one span per chat-process request. The span covers the
// whole upstream exchange, carries the route, request ID, upstream mode, and
// model as attributes, and records the chunk count and final status when the
// stream ends.
//
// # Basic Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "relay.chat")
//	defer span.End()
//
//	tracing.SetUpstreamAttributes(span, "ChatAPI", "gpt-3.5-turbo")
//	tracing.SetStatus(span, err)
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: localhost:4317
//	    service_name: hermes
//	    insecure: true
//
// # Sampling
//
// Three strategies are supported, all wrapped in ParentBased so a sampled
// parent always yields a sampled child:
//   - always: every trace (development)
//   - never: no traces
//   - ratio: a fraction of traces, decided by trace ID hash (production)
//
// # Propagation
//
// Incoming traceparent/tracestate headers are honored via Extract, so a
// front-end or edge proxy that already started a trace sees the relay's
// spans under it. The composite propagator also carries W3C baggage.
//
// # Performance
//
// When disabled, Start returns a noop span in well under a microsecond and
// no exporter or provider is constructed. When enabled, spans are batched
// and exported in the background; an unreachable collector surfaces as
// export errors, never as request failures.
package tracing
