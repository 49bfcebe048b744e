package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"lattice-hq/hermes/pkg/relay"
	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/relay/types"
)

// Verify endpoint messages. The invalid-key text is bilingual like the rest
// of the client-facing error table.
const (
	VerifyEmptyMessage   = "Secret key is empty"
	VerifyInvalidMessage = "密钥无效 | Secret key is invalid"
	VerifySuccessMessage = "Verify successfully"
)

// VerifyHandler answers POST /verify, checking a client-supplied secret key
// against the configured one. Exempt from auth: it IS the login check.
type VerifyHandler struct {
	Secret middleware.SecretSource
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(secret middleware.SecretSource) *VerifyHandler {
	return &VerifyHandler{Secret: secret}
}

// ServeHTTP implements http.Handler.
//
// All three outcomes answer HTTP 200; the envelope status carries the result.
// A malformed body counts as an empty token.
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if err := relay.WriteMethodNotAllowed(w); err != nil {
			slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		}
		return
	}

	ctx := r.Context()

	verifyReq, err := relay.ParseVerifyRequest(r)
	if err != nil || verifyReq.Token == "" {
		if err := relay.WriteEnvelope(w, http.StatusOK, types.NewFail(VerifyEmptyMessage)); err != nil {
			slog.ErrorContext(ctx, "failed to write verify response", "error", err)
		}
		return
	}

	if verifyReq.Token != strings.TrimSpace(h.Secret()) {
		slog.WarnContext(ctx, "secret key verification failed")
		if err := relay.WriteEnvelope(w, http.StatusOK, types.NewFail(VerifyInvalidMessage)); err != nil {
			slog.ErrorContext(ctx, "failed to write verify response", "error", err)
		}
		return
	}

	if err := relay.WriteEnvelope(w, http.StatusOK, types.NewSuccessMessage(VerifySuccessMessage)); err != nil {
		slog.ErrorContext(ctx, "failed to write verify response", "error", err)
	}
}
