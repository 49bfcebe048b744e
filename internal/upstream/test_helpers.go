package upstream

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"lattice-hq/hermes/pkg/config"
)

// TestLogger returns a logger that discards all output.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAPIConfig returns a working API-key configuration pointed at baseURL.
func TestAPIConfig(baseURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		APIKey:         "sk-test",
		Model:          "gpt-3.5-turbo",
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		Temperature:    0.8,
		TopP:           1.0,
		MaxModelTokens: 4096,
		MaxReplyTokens: 1024,
		HistorySize:    100,
	}
}

// TestProxyConfig returns a working access-token configuration pointed at
// reverseProxyURL.
func TestProxyConfig(reverseProxyURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		AccessToken:     "tok-test",
		Model:           "text-davinci-002-render-sha",
		ReverseProxyURL: reverseProxyURL,
		Timeout:         5 * time.Second,
	}
}

// TestProbeConfig returns a probe configuration with the given threshold and
// a schedule that never fires during a test.
func TestProbeConfig(threshold int) config.ProbeConfig {
	return config.ProbeConfig{
		Schedule:         "@every 1h",
		Timeout:          time.Second,
		FailureThreshold: threshold,
	}
}

// WaitForCondition polls until the condition holds or the timeout expires.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}
		<-ticker.C
	}
}
