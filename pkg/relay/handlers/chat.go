package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"lattice-hq/hermes/pkg/relay"
	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/telemetry/metrics"
	"lattice-hq/hermes/pkg/telemetry/tracing"
	"lattice-hq/hermes/pkg/upstream"

	"go.opentelemetry.io/otel/trace"
)

// ChatHandler relays POST /chat-process to the upstream adapter and streams
// the reply back as newline-delimited chunks.
type ChatHandler struct {
	Client  UpstreamClient
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
}

// NewChatHandler creates a new chat-process handler.
func NewChatHandler(client UpstreamClient, collector *metrics.Collector, tracer *tracing.Tracer) *ChatHandler {
	return &ChatHandler{Client: client, Metrics: collector, Tracer: tracer}
}

// ServeHTTP implements http.Handler.
//
// The stream headers commit before the body is parsed, so every failure from
// that point on is written in-band as an error chunk on an HTTP 200 stream.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if err := relay.WriteMethodNotAllowed(w); err != nil {
			slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		}
		return
	}

	ctx := tracing.Extract(r.Context(), r.Header)
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	ctx, span := h.Tracer.Start(ctx, "relay.chat")
	defer span.End()
	tracing.SetRelayAttributes(span, "/chat-process", requestID)

	relay.SetStreamHeaders(w)
	stream := relay.NewStreamWriter(w)

	h.Metrics.StreamStarted()
	defer h.Metrics.StreamEnded()

	chatReq, err := relay.ParseChatProcessRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "rejected chat request",
			"request_id", requestID,
			"error", err,
		)

		if werr := stream.WriteError(relay.ErrorText(err)); werr != nil {
			slog.ErrorContext(ctx, "failed to write error chunk", "error", werr)
		}
		tracing.SetStatus(span, err)
		return
	}

	mode := string(h.Client.Mode())
	tracing.SetUpstreamAttributes(span, mode, h.Client.Model())

	slog.InfoContext(ctx, "processing chat request",
		"request_id", requestID,
		"mode", mode,
		"model", h.Client.Model(),
		"continuation", chatReq.Options.ParentMessageID != "",
	)

	replies, err := h.Client.StreamChat(ctx, &upstream.Request{
		Prompt:          chatReq.Prompt,
		ConversationID:  chatReq.Options.ConversationID,
		ParentMessageID: chatReq.Options.ParentMessageID,
		SystemMessage:   chatReq.SystemMessage,
		Temperature:     chatReq.Temperature,
		TopP:            chatReq.TopP,
	})
	if err != nil {
		h.recordFailure(ctx, span, stream, requestID, mode, err)
		return
	}

	var streamErr error

loop:
	for reply := range replies {
		if reply.Error != nil {
			streamErr = reply.Error
			slog.ErrorContext(ctx, "upstream stream failed",
				"request_id", requestID,
				"mode", mode,
				"chunks_sent", stream.Chunks(),
				"error", reply.Error,
			)

			if werr := stream.WriteError(relay.ErrorText(reply.Error)); werr != nil {
				slog.ErrorContext(ctx, "failed to write error chunk", "error", werr)
			}
			break
		}

		if werr := stream.WriteMessage(relay.FormatChatMessage(reply)); werr != nil {
			streamErr = werr
			slog.WarnContext(ctx, "client write failed, aborting stream",
				"request_id", requestID,
				"chunks_sent", stream.Chunks(),
				"error", werr,
			)
			break
		}

		// Stop early when the client disconnects; ctx cancellation also
		// aborts the upstream request.
		select {
		case <-ctx.Done():
			streamErr = ctx.Err()
			slog.WarnContext(ctx, "client disconnected during stream",
				"request_id", requestID,
				"chunks_sent", stream.Chunks(),
			)
			break loop
		default:
		}
	}

	h.Metrics.AddStreamChunks(stream.Chunks())

	outcome := "success"
	if streamErr != nil {
		outcome = "error"
		h.recordUpstreamError(streamErr)
	}
	h.Metrics.RecordUpstreamRequest(mode, outcome)

	tracing.SetStreamAttributes(span, stream.Chunks())
	tracing.SetStatus(span, streamErr)

	fields := []any{
		"request_id", requestID,
		"mode", mode,
		"chunks_sent", stream.Chunks(),
		"latency_ms", time.Since(startTime).Milliseconds(),
	}
	if traceID := tracing.TraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}
	if streamErr != nil {
		slog.WarnContext(ctx, "chat stream ended with error", fields...)
		return
	}
	slog.InfoContext(ctx, "chat stream completed", fields...)
}

// recordFailure reports a StreamChat call that never produced a channel.
func (h *ChatHandler) recordFailure(ctx context.Context, span trace.Span, stream *relay.StreamWriter, requestID, mode string, err error) {
	slog.ErrorContext(ctx, "upstream request failed",
		"request_id", requestID,
		"mode", mode,
		"error", err,
	)

	if werr := stream.WriteError(relay.ErrorText(err)); werr != nil {
		slog.ErrorContext(ctx, "failed to write error chunk", "error", werr)
	}

	h.recordUpstreamError(err)
	h.Metrics.RecordUpstreamRequest(mode, "error")
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)
}

// recordUpstreamError feeds the upstream error counter, labeling by the
// upstream HTTP status when one exists (0 covers network-level failures).
func (h *ChatHandler) recordUpstreamError(err error) {
	var ue *upstream.UpstreamError
	if errors.As(err, &ue) {
		h.Metrics.RecordUpstreamError(ue.StatusCode)
		return
	}
	h.Metrics.RecordUpstreamError(0)
}
