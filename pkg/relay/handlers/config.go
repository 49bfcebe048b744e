package handlers

import (
	"log/slog"
	"net/http"

	"lattice-hq/hermes/pkg/relay"
	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/relay/types"
	"lattice-hq/hermes/pkg/telemetry/metrics"
	"lattice-hq/hermes/pkg/upstream"
)

// ConfigHandler answers POST /config with the runtime configuration snapshot
// plus the account balance.
type ConfigHandler struct {
	Client   UpstreamClient
	Upstream UpstreamView
	Metrics  *metrics.Collector
}

// NewConfigHandler creates a new config snapshot handler.
func NewConfigHandler(client UpstreamClient, view UpstreamView, collector *metrics.Collector) *ConfigHandler {
	return &ConfigHandler{Client: client, Upstream: view, Metrics: collector}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if err := relay.WriteMethodNotAllowed(w); err != nil {
			slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		}
		return
	}

	ctx := r.Context()
	up := h.Upstream()

	// Balance is fetched per request; failures degrade to "-" inside the
	// adapter and never fail the endpoint.
	balance := h.Client.Balance(ctx)
	if h.Client.Mode() == upstream.ModeChatAPI {
		outcome := "success"
		if balance == "-" {
			outcome = "error"
		}
		h.Metrics.RecordBalanceFetch(outcome)
	}

	snapshot := &types.ModelConfig{
		APIModel:  string(h.Client.Mode()),
		Model:     h.Client.Model(),
		TimeoutMs: int(up.Timeout.Milliseconds()),
		Balance:   balance,
	}

	if h.Client.Mode() == upstream.ModeReverseProxy {
		snapshot.ReverseProxy = up.ReverseProxyURL
	}

	if up.Proxy.SocksHost != "" && up.Proxy.SocksPort != "" {
		snapshot.SocksProxy = up.Proxy.SocksHost + ":" + up.Proxy.SocksPort
	}
	snapshot.HTTPSProxy = up.Proxy.HTTPSProxy

	if err := relay.WriteEnvelope(w, http.StatusOK, types.NewSuccess(snapshot)); err != nil {
		slog.ErrorContext(ctx, "failed to write config response",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}
