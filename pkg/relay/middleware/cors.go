package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig shapes the Cross-Origin Resource Sharing headers the relay
// emits. The relay always answers CORS; there is no off switch.
type CORSConfig struct {
	// AllowedOrigins is the list of allowed origins. ["*"] allows all.
	AllowedOrigins []string

	// AllowedMethods is the list of allowed HTTP methods, sent on preflight.
	AllowedMethods []string

	// AllowedHeaders is the list of allowed request headers, sent on preflight.
	AllowedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns the permissive posture the relay ships with.
// The single-page front-end may be hosted on a different origin than the
// API, so all origins are allowed.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         3600, // 1 hour
	}
}

// CORS adds Cross-Origin Resource Sharing headers to every response and
// answers preflight OPTIONS requests with 204 No Content. A nil config
// falls back to DefaultCORSConfig.
//
// With the wildcard origin the literal "*" is emitted; a narrowed origin
// list echoes the matching request origin instead.
//
// Example usage:
//
//	handler = CORS(DefaultCORSConfig())(handler)
func CORS(config *CORSConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if contains(config.AllowedOrigins, "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" && contains(config.AllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			// Handle preflight OPTIONS request
			if r.Method == http.MethodOptions {
				if len(config.AllowedMethods) > 0 {
					w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				}
				if len(config.AllowedHeaders) > 0 {
					w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				}
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
