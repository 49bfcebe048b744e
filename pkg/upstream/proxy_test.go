package upstream

import (
	"testing"

	"lattice-hq/hermes/pkg/config"
)

func TestNewTransport_Direct(t *testing.T) {
	transport, err := NewTransport(config.OutboundProxyConfig{})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	if transport.Proxy != nil {
		t.Error("expected no proxy for a direct connection")
	}
	if transport.DialContext != nil {
		t.Error("expected no custom dialer for a direct connection")
	}
	if transport.MaxIdleConns != maxIdleConns {
		t.Errorf("expected %d max idle conns, got %d", maxIdleConns, transport.MaxIdleConns)
	}
	if !transport.ForceAttemptHTTP2 {
		t.Error("expected HTTP/2 to be attempted")
	}
}

func TestNewTransport_Socks(t *testing.T) {
	transport, err := NewTransport(config.OutboundProxyConfig{
		SocksHost: "127.0.0.1",
		SocksPort: "1080",
	})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	if transport.DialContext == nil {
		t.Error("expected SOCKS dialer to be installed")
	}
	if transport.Proxy != nil {
		t.Error("expected no HTTP proxy when SOCKS is configured")
	}
}

func TestNewTransport_SocksTakesPriority(t *testing.T) {
	transport, err := NewTransport(config.OutboundProxyConfig{
		SocksHost:  "127.0.0.1",
		SocksPort:  "1080",
		HTTPSProxy: "http://proxy.example:3128",
	})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	if transport.DialContext == nil {
		t.Error("expected SOCKS dialer to win over the HTTP proxy")
	}
	if transport.Proxy != nil {
		t.Error("expected HTTP proxy to be ignored when SOCKS is configured")
	}
}

func TestNewTransport_SocksNeedsHostAndPort(t *testing.T) {
	// A host without a port is not enough; the HTTP proxy applies instead.
	transport, err := NewTransport(config.OutboundProxyConfig{
		SocksHost:  "127.0.0.1",
		HTTPSProxy: "http://proxy.example:3128",
	})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	if transport.DialContext != nil {
		t.Error("expected no SOCKS dialer without a port")
	}
	if transport.Proxy == nil {
		t.Error("expected HTTP proxy to apply")
	}
}

func TestNewTransport_HTTPSProxy(t *testing.T) {
	transport, err := NewTransport(config.OutboundProxyConfig{
		HTTPSProxy: "http://proxy.example:3128",
	})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	if transport.Proxy == nil {
		t.Error("expected proxy function to be installed")
	}
	if transport.DialContext != nil {
		t.Error("expected no custom dialer with an HTTP proxy")
	}
}

func TestNewTransport_InvalidProxyURL(t *testing.T) {
	_, err := NewTransport(config.OutboundProxyConfig{
		HTTPSProxy: "://missing-scheme",
	})
	if err == nil {
		t.Fatal("expected error for invalid proxy URL")
	}
}
