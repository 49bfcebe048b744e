package upstream

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"lattice-hq/hermes/pkg/config"
)

// Connection pooling settings for the shared outbound transport.
const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
)

// NewTransport builds the outbound transport shared by the chat, probe, and
// balance calls, honoring the configured proxy settings. A SOCKS5 endpoint
// takes priority when both its host and port are set, then an HTTP CONNECT
// proxy, then a direct connection.
func NewTransport(cfg config.OutboundProxyConfig) (*http.Transport, error) {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	if cfg.SocksHost != "" && cfg.SocksPort != "" {
		addr := net.JoinHostPort(cfg.SocksHost, cfg.SocksPort)

		var auth *proxy.Auth
		if cfg.SocksUsername != "" || cfg.SocksPassword != "" {
			auth = &proxy.Auth{
				User:     cfg.SocksUsername,
				Password: cfg.SocksPassword,
			}
		}

		dialer, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", addr, err)
		}

		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
				return dialer.Dial(network, address)
			}
		}
		return transport, nil
	}

	if cfg.HTTPSProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPSProxy)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTPS proxy URL %q: %w", cfg.HTTPSProxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		return transport, nil
	}

	// Direct connection. Proxy settings come from the loaded configuration,
	// never from the process environment at dial time.
	return transport, nil
}
