//go:build integration

package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lattice-hq/hermes/pkg/config"
	"lattice-hq/hermes/pkg/relay/handlers"
	"lattice-hq/hermes/pkg/relay/middleware"
	"lattice-hq/hermes/pkg/relay/types"
	"lattice-hq/hermes/pkg/server"
	"lattice-hq/hermes/pkg/telemetry/metrics"
	"lattice-hq/hermes/pkg/telemetry/tracing"
	"lattice-hq/hermes/pkg/upstream"
)

// newRelayServer assembles the full relay handler stack on a mock upstream
// client and serves it from a test listener.
func newRelayServer(t *testing.T, client upstream.Client, secretKey string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Upstream.APIKey = "sk-integration-test"
	cfg.Auth.SecretKey = secretKey
	config.ApplyDefaults(cfg)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		t.Fatalf("tracing.New() error = %v", err)
	}
	prober := upstream.NewProber(client, config.ProbeConfig{FailureThreshold: 3}, nil, nil)

	srv := server.NewServer(cfg, client, prober, collector, tracer)

	testServer := httptest.NewServer(srv.Handler())
	t.Cleanup(testServer.Close)
	return testServer
}

// streamLines posts a chat request and returns the response plus its body
// split into chunk lines.
func streamLines(t *testing.T, url, body string) (*http.Response, []string) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading stream body: %v", err)
	}
	return resp, strings.Split(string(raw), "\n")
}

func TestRelayIntegration(t *testing.T) {
	client := &mockUpstream{
		mode:  upstream.ModeChatAPI,
		model: "gpt-3.5-turbo",
		replies: []upstream.Reply{
			{ID: "msg-1", Text: "Hello", Delta: "Hello", Role: "assistant"},
			{ID: "msg-1", Text: "Hello there", Delta: " there", Role: "assistant", FinishReason: "stop"},
		},
		balance: "4.50",
	}
	ts := newRelayServer(t, client, "")

	t.Run("chat stream delivers cumulative chunks", func(t *testing.T) {
		resp, lines := streamLines(t, ts.URL+"/chat-process", `{"prompt":"hi"}`)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %q, want application/octet-stream", ct)
		}
		if len(lines) != 2 {
			t.Fatalf("got %d chunk lines, want 2: %q", len(lines), lines)
		}

		var first, last types.StreamChunk
		if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
			t.Fatalf("first chunk is not JSON: %v", err)
		}
		if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
			t.Fatalf("last chunk is not JSON: %v", err)
		}

		if first.OK == nil || first.OK.Text != "Hello" {
			t.Errorf("first chunk = %+v, want ok with text %q", first, "Hello")
		}
		if last.OK == nil || last.OK.Text != "Hello there" {
			t.Errorf("last chunk = %+v, want ok with text %q", last, "Hello there")
		}
		if last.OK != nil && last.OK.FinishReason != "stop" {
			t.Errorf("finish reason = %q, want stop", last.OK.FinishReason)
		}
	})

	t.Run("upstream failure arrives in-band on a 200 stream", func(t *testing.T) {
		failing := &mockUpstream{
			mode:  upstream.ModeChatAPI,
			model: "gpt-3.5-turbo",
			err:   upstream.NewStatusError(upstream.ModeChatAPI, http.StatusBadGateway, "", nil),
		}
		failTS := newRelayServer(t, failing, "")

		resp, lines := streamLines(t, failTS.URL+"/chat-process", `{"prompt":"hi"}`)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if len(lines) != 1 {
			t.Fatalf("got %d chunk lines, want 1: %q", len(lines), lines)
		}

		var chunk types.StreamChunk
		if err := json.Unmarshal([]byte(lines[0]), &chunk); err != nil {
			t.Fatalf("error chunk is not JSON: %v", err)
		}
		if chunk.Error != "[OpenAI] 错误的网关 | Bad Gateway" {
			t.Errorf("error chunk = %q, want the bad gateway mapping", chunk.Error)
		}
	})

	t.Run("non-POST is rejected with the Fail envelope", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/chat-process")
		if err != nil {
			t.Fatalf("GET /chat-process error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
		}
		if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
			t.Errorf("Allow = %q, want POST", allow)
		}

		var env struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding envelope: %v", err)
		}
		if env.Status != "Fail" || env.Message != "Method Not Allowed" {
			t.Errorf("envelope = %+v, want Fail / Method Not Allowed", env)
		}
	})

	t.Run("session reports open access and the mode label", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/session", "application/json", nil)
		if err != nil {
			t.Fatalf("POST /session error = %v", err)
		}
		defer resp.Body.Close()

		var env struct {
			Status string            `json:"status"`
			Data   types.SessionData `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding session response: %v", err)
		}

		if env.Status != "Success" {
			t.Errorf("status = %q, want Success", env.Status)
		}
		if env.Data.Auth {
			t.Error("auth = true, want false with no secret configured")
		}
		if env.Data.Model != "ChatAPI" {
			t.Errorf("model label = %q, want ChatAPI", env.Data.Model)
		}
	})

	t.Run("config returns the runtime snapshot", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/config", "application/json", nil)
		if err != nil {
			t.Fatalf("POST /config error = %v", err)
		}
		defer resp.Body.Close()

		var env struct {
			Status string            `json:"status"`
			Data   types.ModelConfig `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding config response: %v", err)
		}

		if env.Data.APIModel != "ChatAPI" {
			t.Errorf("apiModel = %q, want ChatAPI", env.Data.APIModel)
		}
		if env.Data.TimeoutMs != 30000 {
			t.Errorf("timeoutMs = %d, want 30000", env.Data.TimeoutMs)
		}
		if env.Data.Balance != "4.50" {
			t.Errorf("balance = %q, want 4.50", env.Data.Balance)
		}
	})

	t.Run("every endpoint answers at both mounts", func(t *testing.T) {
		for _, route := range []string{"/session", "/config", "/verify"} {
			bare := postJSON(t, ts.URL+route, `{"token":"x"}`)
			api := postJSON(t, ts.URL+"/api"+route, `{"token":"x"}`)
			if bare != api {
				t.Errorf("route %s: bare mount %q != api mount %q", route, bare, api)
			}
		}

		resp, lines := streamLines(t, ts.URL+"/api/chat-process", `{"prompt":"hi"}`)
		if resp.StatusCode != http.StatusOK || len(lines) != 2 {
			t.Errorf("api mount stream: status %d with %d lines, want 200 with 2", resp.StatusCode, len(lines))
		}
	})

	t.Run("CORS headers on plain and preflight requests", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/session", "application/json", nil)
		if err != nil {
			t.Fatalf("POST /session error = %v", err)
		}
		resp.Body.Close()
		if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", origin)
		}

		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/chat-process", nil)
		if err != nil {
			t.Fatalf("building preflight request: %v", err)
		}
		req.Header.Set("Origin", "http://localhost:1002")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		preflight, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("preflight request error = %v", err)
		}
		defer preflight.Body.Close()

		if preflight.StatusCode != http.StatusNoContent {
			t.Errorf("preflight status = %d, want %d", preflight.StatusCode, http.StatusNoContent)
		}
		if methods := preflight.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(methods, http.MethodPost) {
			t.Errorf("Access-Control-Allow-Methods = %q, want POST included", methods)
		}
	})

	t.Run("operational endpoints are root-only", func(t *testing.T) {
		for _, path := range []string{"/health", "/ready", "/metrics"} {
			resp, err := http.Get(ts.URL + path)
			if err != nil {
				t.Fatalf("GET %s error = %v", path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusOK)
			}
		}

		resp, err := http.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET /api/health status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})
}

func TestRelayIntegration_AccessControl(t *testing.T) {
	client := &mockUpstream{
		mode:  upstream.ModeChatAPI,
		model: "gpt-3.5-turbo",
		replies: []upstream.Reply{
			{ID: "msg-1", Text: "ok", Delta: "ok", Role: "assistant", FinishReason: "stop"},
		},
	}
	ts := newRelayServer(t, client, "test-secret")

	t.Run("protected route rejects a missing key", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/chat-process", "application/json", strings.NewReader(`{"prompt":"hi"}`))
		if err != nil {
			t.Fatalf("POST /chat-process error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}

		var env struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding envelope: %v", err)
		}
		if env.Status != string(types.StatusUnauthorized) {
			t.Errorf("status field = %q, want %q", env.Status, types.StatusUnauthorized)
		}
		if env.Message != middleware.AuthFailedMessage {
			t.Errorf("message = %q, want %q", env.Message, middleware.AuthFailedMessage)
		}
	})

	t.Run("protected route accepts the bearer key", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/chat-process", strings.NewReader(`{"prompt":"hi"}`))
		if err != nil {
			t.Fatalf("building request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer test-secret")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /chat-process error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("session and verify stay reachable without a key", func(t *testing.T) {
		for _, route := range []string{"/session", "/api/session"} {
			resp, err := http.Post(ts.URL+route, "application/json", nil)
			if err != nil {
				t.Fatalf("POST %s error = %v", route, err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("POST %s status = %d, want %d", route, resp.StatusCode, http.StatusOK)
			}
		}

		var env struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		resp, err := http.Post(ts.URL+"/verify", "application/json", strings.NewReader(`{"token":"test-secret"}`))
		if err != nil {
			t.Fatalf("POST /verify error = %v", err)
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding verify response: %v", err)
		}
		if env.Message != handlers.VerifySuccessMessage {
			t.Errorf("verify message = %q, want %q", env.Message, handlers.VerifySuccessMessage)
		}
	})

	t.Run("session reports auth required", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/session", "application/json", nil)
		if err != nil {
			t.Fatalf("POST /session error = %v", err)
		}
		defer resp.Body.Close()

		var env struct {
			Data types.SessionData `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding session response: %v", err)
		}
		if !env.Data.Auth {
			t.Error("auth = false, want true with a secret configured")
		}
	})

	t.Run("verify outcomes", func(t *testing.T) {
		tests := []struct {
			name        string
			body        string
			wantStatus  string
			wantMessage string
		}{
			{
				name:        "empty token",
				body:        `{"token":""}`,
				wantStatus:  "Fail",
				wantMessage: handlers.VerifyEmptyMessage,
			},
			{
				name:        "wrong token",
				body:        `{"token":"nope"}`,
				wantStatus:  "Fail",
				wantMessage: handlers.VerifyInvalidMessage,
			},
			{
				name:        "right token",
				body:        `{"token":"test-secret"}`,
				wantStatus:  "Success",
				wantMessage: handlers.VerifySuccessMessage,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := http.Post(ts.URL+"/verify", "application/json", strings.NewReader(tt.body))
				if err != nil {
					t.Fatalf("POST /verify error = %v", err)
				}
				defer resp.Body.Close()

				var env struct {
					Status  string `json:"status"`
					Message string `json:"message"`
				}
				if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
					t.Fatalf("decoding envelope: %v", err)
				}
				if env.Status != tt.wantStatus || env.Message != tt.wantMessage {
					t.Errorf("envelope = %+v, want %s / %s", env, tt.wantStatus, tt.wantMessage)
				}
			})
		}
	})
}

// postJSON posts a JSON body and returns "status body" for comparing mounts.
func postJSON(t *testing.T, url, body string) string {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s response: %v", url, err)
	}
	return resp.Status + " " + string(raw)
}

// mockUpstream implements upstream.Client for integration testing.
type mockUpstream struct {
	mode    upstream.Mode
	model   string
	replies []upstream.Reply
	err     error
	balance string
}

func (m *mockUpstream) Mode() upstream.Mode {
	return m.mode
}

func (m *mockUpstream) Model() string {
	return m.model
}

func (m *mockUpstream) StreamChat(ctx context.Context, req *upstream.Request) (<-chan *upstream.Reply, error) {
	if m.err != nil {
		return nil, m.err
	}

	ch := make(chan *upstream.Reply, len(m.replies))
	go func() {
		defer close(ch)
		for i := range m.replies {
			select {
			case <-ctx.Done():
				return
			case ch <- &m.replies[i]:
			}
		}
	}()
	return ch, nil
}

func (m *mockUpstream) Balance(ctx context.Context) string {
	if m.balance == "" {
		return "-"
	}
	return m.balance
}

func (m *mockUpstream) Probe(ctx context.Context) error {
	return nil
}

func (m *mockUpstream) Close() error {
	return nil
}
