package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"lattice-hq/hermes/pkg/relay"
	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/relay/types"
)

// SessionHandler answers POST /session with whether the relay requires a
// secret key and which upstream mode is active. The endpoint is exempt from
// auth so the front end can render the login prompt.
type SessionHandler struct {
	Client UpstreamClient
	Secret middleware.SecretSource
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(client UpstreamClient, secret middleware.SecretSource) *SessionHandler {
	return &SessionHandler{Client: client, Secret: secret}
}

// ServeHTTP implements http.Handler.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if err := relay.WriteMethodNotAllowed(w); err != nil {
			slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		}
		return
	}

	data := &types.SessionData{
		Auth:  strings.TrimSpace(h.Secret()) != "",
		Model: string(h.Client.Mode()),
	}

	if err := relay.WriteEnvelope(w, http.StatusOK, types.NewSuccess(data)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write session response", "error", err)
	}
}
