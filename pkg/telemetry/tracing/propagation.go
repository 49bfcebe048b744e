package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// W3C Trace Context Propagation
//
// The W3C Trace Context specification (https://www.w3.org/TR/trace-context/)
// defines standard HTTP headers for propagating trace context across service
// boundaries:
//
// traceparent: Required header containing trace context
// Format: version-trace_id-parent_id-trace_flags
// Example: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// tracestate: Optional header containing vendor-specific trace context
//
// New installs the same composite TraceContext+Baggage propagator as the
// global propagator. The helpers below use their own instance, so header
// parsing works even before a tracer is initialized.

// Propagator returns a W3C Trace Context propagator combined with baggage
// propagation. It matches the global propagator installed by New.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// Extract extracts trace context from HTTP headers and returns a context
// carrying it. Call it on the server side when receiving a request:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "relay.chat")
//	defer span.End()
//
// If no trace context is found in the headers, the original context is returned.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject serializes the trace context from ctx into traceparent and
// tracestate headers. Call it on the client side before an outbound request:
//
//	req, _ := http.NewRequestWithContext(ctx, "POST", url, body)
//	tracing.Inject(ctx, req.Header)
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
