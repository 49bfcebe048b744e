package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans
// and ensure consistent attribute naming across the codebase.
//
// Standard attribute keys follow OpenTelemetry semantic conventions where
// applicable (http.*, error.*). Custom attribute keys use the "hermes.*"
// namespace:
//   - hermes.route: HTTP route handling the request
//   - hermes.upstream.mode: upstream mode (ChatAPI or ReverseProxy)
//   - hermes.model: model name sent upstream
//   - hermes.stream.chunks: number of chunks written to the client

// Common attribute keys used throughout the system
const (
	// Relay attributes
	AttrRoute     = "hermes.route"
	AttrRequestID = "hermes.request_id"

	// Upstream attributes
	AttrUpstreamMode   = "hermes.upstream.mode"
	AttrModel          = "hermes.model"
	AttrUpstreamStatus = "hermes.upstream.status"

	// Stream attributes
	AttrStreamChunks = "hermes.stream.chunks"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// SetRelayAttributes sets request-scoped attributes on a span.
//
// Example:
//
//	SetRelayAttributes(span, "/chat-process", "req-123")
func SetRelayAttributes(span trace.Span, route, requestID string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRoute, route),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetUpstreamAttributes sets upstream-related attributes on a span.
//
// Example:
//
//	SetUpstreamAttributes(span, "ChatAPI", "gpt-3.5-turbo")
func SetUpstreamAttributes(span trace.Span, mode, model string) {
	span.SetAttributes(
		attribute.String(AttrUpstreamMode, mode),
		attribute.String(AttrModel, model),
	)
}

// SetStreamAttributes records how many chunks a completed stream produced.
func SetStreamAttributes(span trace.Span, chunks int) {
	span.SetAttributes(
		attribute.Int(AttrStreamChunks, chunks),
	)
}

// SetUpstreamStatus records the HTTP status returned by the upstream API.
// A status of 0 means the request never reached the upstream.
func SetUpstreamStatus(span trace.Span, status int) {
	span.SetAttributes(
		attribute.Int(AttrUpstreamStatus, status),
	)
}
