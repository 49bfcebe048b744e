package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"lattice-hq/hermes/pkg/relay/types"
)

// Recovery recovers from panics in HTTP handlers and returns a 500 Internal
// Server Error with a Fail envelope. It logs the panic with stack trace for
// debugging but does not expose internal details to clients.
//
// Example usage:
//
//	handler = Recovery(handler)
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				env := types.NewFail("An internal error occurred. Please try again later.")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				// Encode error response (ignore encoding errors at this point)
				_ = json.NewEncoder(w).Encode(env)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
