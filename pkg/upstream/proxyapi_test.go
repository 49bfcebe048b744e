package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	testhelpers "lattice-hq/hermes/internal/upstream"
	"lattice-hq/hermes/pkg/config"
)

// newTestProxyClient builds an access-token client against the mock server.
func newTestProxyClient(t *testing.T, cfg config.UpstreamConfig) *ProxyClient {
	t.Helper()

	transport, err := NewTransport(config.OutboundProxyConfig{})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}
	client, err := NewProxyClient(cfg, transport, testhelpers.TestLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestProxyClient_StreamChat(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StreamChunks: []string{
			testhelpers.ConversationEvent("msg-1", "conv-1", "Hel"),
			testhelpers.ConversationEvent("msg-1", "conv-1", "Hello"),
		},
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	replies, err := client.StreamChat(context.Background(), &Request{Prompt: "Say hello"})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}

	collected := collectReplies(t, replies)

	// Two incremental updates plus the final one.
	if len(collected) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(collected))
	}

	// Deltas are derived from the cumulative text each event carries.
	if collected[0].Delta != "Hel" || collected[1].Delta != "lo" {
		t.Errorf("expected deltas %q, %q, got %q, %q", "Hel", "lo", collected[0].Delta, collected[1].Delta)
	}

	final := collected[len(collected)-1]
	if final.Text != "Hello" {
		t.Errorf("expected final text %q, got %q", "Hello", final.Text)
	}
	if final.ID != "msg-1" {
		t.Errorf("expected reply ID from the upstream, got %q", final.ID)
	}
	if final.ConversationID != "conv-1" {
		t.Errorf("expected conversation ID %q, got %q", "conv-1", final.ConversationID)
	}
	if final.FinishReason != FinishReasonStop {
		t.Errorf("expected finish reason %q, got %q", FinishReasonStop, final.FinishReason)
	}
	if final.ParentMessageID == "" {
		t.Error("expected parent message ID to be assigned")
	}
}

func TestProxyClient_StreamChat_RequestShape(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StreamChunks: []string{testhelpers.ConversationEvent("msg-1", "conv-1", "Hi")},
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	replies, err := client.StreamChat(context.Background(), &Request{
		Prompt:          "continue please",
		ConversationID:  "conv-1",
		ParentMessageID: "parent-42",
	})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}
	collectReplies(t, replies)

	recorded, ok := mock.LastRequest()
	if !ok {
		t.Fatal("expected a captured request")
	}

	// The access token travels as a bearer token on an SSE request.
	if got := recorded.Header.Get("Authorization"); got != "Bearer tok-test" {
		t.Errorf("expected bearer authorization, got %q", got)
	}
	if got := recorded.Header.Get("Accept"); got != "text/event-stream" {
		t.Errorf("expected SSE accept header, got %q", got)
	}

	var sent struct {
		Action   string `json:"action"`
		Messages []struct {
			ID     string `json:"id"`
			Author struct {
				Role string `json:"role"`
			} `json:"author"`
			Content struct {
				ContentType string   `json:"content_type"`
				Parts       []string `json:"parts"`
			} `json:"content"`
		} `json:"messages"`
		Model           string `json:"model"`
		ParentMessageID string `json:"parent_message_id"`
		ConversationID  string `json:"conversation_id"`
	}
	if err := json.Unmarshal(recorded.Body, &sent); err != nil {
		t.Fatalf("failed to decode captured request: %v", err)
	}

	if sent.Action != "next" {
		t.Errorf("expected action %q, got %q", "next", sent.Action)
	}
	if len(sent.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent.Messages))
	}
	msg := sent.Messages[0]
	if msg.Author.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Author.Role)
	}
	if msg.Content.ContentType != "text" {
		t.Errorf("expected content type %q, got %q", "text", msg.Content.ContentType)
	}
	if len(msg.Content.Parts) != 1 || msg.Content.Parts[0] != "continue please" {
		t.Errorf("expected prompt in parts, got %v", msg.Content.Parts)
	}
	if sent.Model != "text-davinci-002-render-sha" {
		t.Errorf("expected model %q, got %q", "text-davinci-002-render-sha", sent.Model)
	}
	if sent.ParentMessageID != "parent-42" {
		t.Errorf("expected parent passthrough, got %q", sent.ParentMessageID)
	}
	if sent.ConversationID != "conv-1" {
		t.Errorf("expected conversation passthrough, got %q", sent.ConversationID)
	}
}

func TestProxyClient_StreamChat_GeneratesParentID(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StreamChunks: []string{testhelpers.ConversationEvent("msg-1", "conv-1", "Hi")},
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	replies, err := client.StreamChat(context.Background(), &Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}
	collectReplies(t, replies)

	recorded, _ := mock.LastRequest()
	var sent struct {
		ParentMessageID string `json:"parent_message_id"`
		ConversationID  string `json:"conversation_id"`
	}
	if err := json.Unmarshal(recorded.Body, &sent); err != nil {
		t.Fatalf("failed to decode captured request: %v", err)
	}

	// A fresh conversation still carries a parent identifier, but no
	// conversation identifier.
	if sent.ParentMessageID == "" {
		t.Error("expected generated parent message ID")
	}
	if sent.ConversationID != "" {
		t.Errorf("expected no conversation ID, got %q", sent.ConversationID)
	}
}

func TestProxyClient_StreamChat_SkipsNoise(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StreamChunks: []string{
			"2023-05-14 moderation ping",
			`{"message":{"id":"m-user","author":{"role":"user"},"content":{"content_type":"text","parts":["echoed prompt"]}},"error":null}`,
			testhelpers.ConversationEvent("msg-1", "conv-1", "Hi"),
		},
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	replies, err := client.StreamChat(context.Background(), &Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}

	collected := collectReplies(t, replies)

	// Only the assistant event and the final reply come through.
	if len(collected) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(collected))
	}
	if collected[0].Delta != "Hi" {
		t.Errorf("expected delta %q, got %q", "Hi", collected[0].Delta)
	}
}

func TestProxyClient_StreamChat_InBandError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StreamChunks: []string{testhelpers.ConversationErrorEvent("rate limited, slow down")},
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	replies, err := client.StreamChat(context.Background(), &Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}

	var last *Reply
	for reply := range replies {
		last = reply
	}
	if last == nil || last.Error == nil {
		t.Fatal("expected an in-band error reply")
	}
	if !strings.Contains(ErrorMessage(last.Error), "rate limited, slow down") {
		t.Errorf("expected upstream text in error, got %q", ErrorMessage(last.Error))
	}
}

func TestProxyClient_StreamChat_UpstreamStatus(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       "upstream exploded",
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	_, err := client.StreamChat(context.Background(), &Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstreamErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", upstreamErr.StatusCode)
	}

	want := "[OpenAI] 错误的网关 | Bad Gateway"
	if got := ErrorMessage(err); got != want {
		t.Errorf("expected message %q, got %q", want, got)
	}
}

func TestProxyClient_StreamChat_NoTerminator(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	// The stream ends without [DONE]; what was received still counts.
	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{
		StreamChunks: []string{testhelpers.ConversationEvent("msg-1", "conv-1", "Hi")},
		OmitDone:     true,
	})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))

	replies, err := client.StreamChat(context.Background(), &Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}

	collected := collectReplies(t, replies)
	final := collected[len(collected)-1]
	if final.Text != "Hi" {
		t.Errorf("expected final text %q, got %q", "Hi", final.Text)
	}
	if final.FinishReason != FinishReasonStop {
		t.Errorf("expected finish reason %q, got %q", FinishReasonStop, final.FinishReason)
	}
}

func TestProxyClient_Probe(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{StatusCode: 200})

	client := newTestProxyClient(t, testhelpers.TestProxyConfig(mock.URL()+testhelpers.ConversationPath))
	ctx := context.Background()

	if err := client.Probe(ctx); err != nil {
		t.Errorf("expected probe to pass, got %v", err)
	}

	// Server-side failures flip the probe.
	mock.SetResponse(testhelpers.ConversationPath, testhelpers.MockResponse{StatusCode: http.StatusServiceUnavailable})
	if err := client.Probe(ctx); err == nil {
		t.Error("expected probe to fail on a server error")
	}
}

func TestProxyClient_Balance(t *testing.T) {
	client := newTestProxyClient(t, testhelpers.TestProxyConfig("https://proxy.example/api/conversation"))

	if balance := client.Balance(context.Background()); balance != BalanceUnavailable {
		t.Errorf("expected placeholder balance, got %q", balance)
	}
}

func TestNewProxyClient_Validation(t *testing.T) {
	transport, err := NewTransport(config.OutboundProxyConfig{})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	cfg := testhelpers.TestProxyConfig("https://proxy.example/api/conversation")
	cfg.AccessToken = ""
	if _, err := NewProxyClient(cfg, transport, testhelpers.TestLogger()); err == nil {
		t.Error("expected error without an access token")
	}

	cfg = testhelpers.TestProxyConfig("")
	if _, err := NewProxyClient(cfg, transport, testhelpers.TestLogger()); err == nil {
		t.Error("expected error without a reverse proxy URL")
	}
}
