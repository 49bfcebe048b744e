package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"lattice-hq/hermes/pkg/relay"
	"lattice-hq/hermes/pkg/relay/types"
)

// AuthFailedMessage is the body message returned when the secret key check
// fails. The front-end displays it verbatim.
const AuthFailedMessage = "Error: 无访问权限 | No access rights"

// AuthError reports why a request failed the secret-key check. Clients only
// ever see AuthFailedMessage; the typed reason goes to the log.
type AuthError struct {
	// Reason names the rejected credential state.
	Reason string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// SecretSource returns the currently configured secret key. The middleware
// reads through a source instead of a captured string so a hot-reloaded key
// takes effect on the next request.
type SecretSource func() string

// StaticSecret returns a source that always yields key.
func StaticSecret(key string) SecretSource {
	return func() string { return key }
}

// exemptPaths are the endpoints a client may call before it has the secret
// key: the session probe and the key verification endpoint, at both mounts.
var exemptPaths = map[string]struct{}{
	"/session":     {},
	"/verify":      {},
	"/api/session": {},
	"/api/verify":  {},
}

// Auth enforces the secret-key check on protected endpoints. Clients send the
// key as "Authorization: Bearer <secret>"; the token must match the
// configured key exactly after whitespace trimming.
//
// When the source yields an empty key, authentication is disabled and every
// request passes through.
//
// Example usage:
//
//	handler = Auth(middleware.StaticSecret(cfg.Auth.SecretKey))(handler)
func Auth(secret SecretSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(secret())
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if err := authorize(r, key); err != nil {
				slog.WarnContext(r.Context(), "request rejected",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				_ = relay.WriteEnvelope(w, http.StatusUnauthorized,
					types.NewUnauthorized(AuthFailedMessage))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authorize checks the bearer token on r against the configured key. A nil
// return admits the request.
func authorize(r *http.Request, key string) error {
	token := relay.ExtractBearerToken(r)
	switch {
	case token == "":
		return &AuthError{Reason: "missing bearer token"}
	case token != key:
		return &AuthError{Reason: "secret key mismatch"}
	}
	return nil
}
