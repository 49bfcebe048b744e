package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lattice-hq/hermes/pkg/config"
)

// replyBuffer is the channel capacity for streamed replies. A small buffer
// keeps the upstream reader from stalling on a slow client write without
// accumulating unbounded state.
const replyBuffer = 8

// liveTimeout returns the current upstream deadline. Reading through the
// config singleton lets a hot-reloaded timeout apply without rebuilding the
// client; the constructed value serves when the singleton is not in use.
func liveTimeout(fallback time.Duration) time.Duration {
	if cfg := config.GetConfig(); cfg != nil && cfg.Upstream.Timeout > 0 {
		return cfg.Upstream.Timeout
	}
	return fallback
}

// Client is the single point of contact with the upstream chat service.
// One of two implementations is selected at startup from the configured
// credentials and never rebuilt in-process.
//
// All methods are safe for concurrent use. Each StreamChat call is an
// independent exchange; the client itself holds no per-conversation state
// beyond the API-key variant's message store.
type Client interface {
	// Mode returns the variant label reported by /session and /config.
	Mode() Mode

	// Model returns the underlying model identifier sent upstream.
	Model() string

	// StreamChat relays one prompt upstream and returns a channel yielding a
	// Reply per incremental update. The channel closes when the exchange
	// completes or fails; a Reply with Error set is always the last element.
	// Cancelling ctx aborts the upstream exchange.
	//
	// An error return means the exchange could not be started; once a
	// channel is returned all failures arrive in-band.
	StreamChat(ctx context.Context, req *Request) (<-chan *Reply, error)

	// Balance reports the remaining account credit as a display string.
	// It never fails; "-" is returned whenever the balance is unavailable.
	Balance(ctx context.Context) string

	// Probe performs a lightweight reachability check against the upstream.
	Probe(ctx context.Context) error

	// Close releases held resources. The client must not be used afterwards.
	Close() error
}

// NewClient selects the upstream variant from the configured credentials and
// builds it on a transport honoring the proxy settings. An API key wins over
// an access token when both are present; configuring neither is an error.
func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) (Client, error) {
	transport, err := NewTransport(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.APIKey != "":
		return NewAPIClient(cfg, transport, logger)
	case cfg.AccessToken != "":
		return NewProxyClient(cfg, transport, logger)
	default:
		return nil, fmt.Errorf("missing OPENAI_API_KEY or OPENAI_ACCESS_TOKEN: one credential is required")
	}
}

// chatBaseURL normalizes a configured base URL for the chat-completions
// client, which expects the versioned API root.
func chatBaseURL(raw string) string {
	base := strings.TrimRight(raw, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}

// billingBaseURL normalizes a configured base URL for the billing endpoint,
// which lives outside the versioned API root.
func billingBaseURL(raw string) string {
	base := strings.TrimRight(raw, "/")
	return strings.TrimSuffix(base, "/v1")
}
