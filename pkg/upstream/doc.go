// Package upstream implements the adapter for the upstream chat service.
//
// # Overview
//
// The upstream package is the relay's single point of contact with the chat
// backend. It selects one of two mutually exclusive variants at startup from
// the configured credentials, streams replies back over a channel, fetches
// the account balance, and probes reachability on a schedule.
//
// # Modes
//
// The two variants implement the same Client interface:
//
//  1. ChatAPI (APIClient) - authenticates with an API key against the
//     chat-completions API via the imported client library. Multi-turn
//     context is rebuilt from an in-process LRU message store, since the
//     API itself is stateless.
//  2. ReverseProxy (ProxyClient) - authenticates with an access token
//     against a conversation reverse proxy, posting conversation-API JSON
//     and parsing the SSE reply stream by hand. Continuation state lives
//     upstream; the adapter passes the identifiers through.
//
// An API key wins when both credentials are configured. The selected
// variant is built once at startup and never rebuilt in-process.
//
// # Basic Usage
//
//	client, err := upstream.NewClient(cfg.Upstream, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	replies, err := client.StreamChat(ctx, &upstream.Request{
//	    Prompt: "Hello!",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for reply := range replies {
//	    if reply.Error != nil {
//	        log.Fatal(reply.Error)
//	    }
//	    fmt.Print(reply.Delta)
//	}
//
// Every Reply carries the cumulative text so far plus the continuation
// identifiers a client echoes on its next turn; the final Reply carries a
// finish reason.
//
// # Outbound Proxy
//
// All upstream traffic (chat, probe, balance) shares one transport built by
// NewTransport. A configured SOCKS5 endpoint takes priority, then an HTTP
// CONNECT proxy, then a direct connection.
//
// # Error Handling
//
// The package defines specific error types for failure scenarios:
//
//   - UpstreamError: a failed exchange, carrying the user-facing message
//     mapped from the upstream HTTP status
//   - TimeoutError: the exchange exceeded the configured deadline
//   - ParseError: malformed upstream payload
//   - StreamError: transport failure while reading a stream
//
// Known upstream statuses (401, 403, 500, 502, 503, 504) map to fixed
// bilingual messages; unknown failures pass their own text through.
// ErrorMessage extracts the user-facing text from any of these.
//
// # Health Probing
//
// Prober schedules reachability checks with cron expressions (or @every
// descriptors) and tracks consecutive failures; the upstream is marked
// unhealthy only after the configured threshold so readiness does not flap
// on a single miss.
//
// # Thread Safety
//
// Both client variants, the message store, and the Prober are safe for
// concurrent use.
package upstream
