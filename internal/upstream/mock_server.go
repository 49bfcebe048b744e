package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Paths served by the upstream endpoints the relay talks to.
const (
	ChatCompletionsPath = "/v1/chat/completions"
	ModelsPath          = "/v1/models"
	BillingPath         = "/dashboard/billing/credit_grants"
	ConversationPath    = "/api/conversation"
)

// MockServer simulates the upstream chat service for adapter tests. It can
// play the chat-completions API, the conversation reverse proxy, and the
// billing endpoint, depending on which paths are configured.
type MockServer struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses map[string]MockResponse
	requests  []RecordedRequest
}

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode   int
	Body         interface{}
	Delay        time.Duration
	Headers      map[string]string
	StreamChunks []string
	OmitDone     bool
}

// RecordedRequest captures one request the mock server received.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer creates a mock upstream with no configured paths.
// Unconfigured paths return 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the mock server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets the canned response for a path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// RequestCount returns the number of requests received so far.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// Requests returns a copy of all recorded requests.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]RecordedRequest, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// LastRequest returns the most recent recorded request.
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return RecordedRequest{}, false
	}
	return ms.requests[len(ms.requests)-1], true
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 {
		ms.handleStream(w, response)
		return
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// handleStream plays the configured chunks as Server-Sent Events, ending
// with the [DONE] terminator unless suppressed.
func (ms *MockServer) handleStream(w http.ResponseWriter, response MockResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, chunk := range response.StreamChunks {
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
		time.Sleep(2 * time.Millisecond)
	}

	if !response.OmitDone {
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

// ChatCompletionChunk builds one chat-completions SSE payload carrying an
// incremental delta.
func ChatCompletionChunk(delta, finishReason string) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "gpt-3.5-turbo",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"delta": map[string]interface{}{
					"content": delta,
				},
				"finish_reason": nullableString(finishReason),
			},
		},
	}
	data, _ := json.Marshal(chunk)
	return string(data)
}

// ConversationEvent builds one conversation-API SSE payload carrying the
// cumulative reply text.
func ConversationEvent(messageID, conversationID, cumulativeText string) string {
	event := map[string]interface{}{
		"conversation_id": conversationID,
		"message": map[string]interface{}{
			"id": messageID,
			"author": map[string]interface{}{
				"role": "assistant",
			},
			"content": map[string]interface{}{
				"content_type": "text",
				"parts":        []string{cumulativeText},
			},
		},
		"error": nil,
	}
	data, _ := json.Marshal(event)
	return string(data)
}

// ConversationErrorEvent builds a conversation-API payload reporting an
// in-band failure.
func ConversationErrorEvent(message string) string {
	event := map[string]interface{}{
		"error": message,
	}
	data, _ := json.Marshal(event)
	return string(data)
}

// BillingResponse builds the credit grants payload.
func BillingResponse(available float64) map[string]interface{} {
	return map[string]interface{}{
		"total_granted":   available + 5,
		"total_used":      5.0,
		"total_available": available,
	}
}

// ErrorResponse builds an API error response in chat-completions format.
func ErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
				"type":    "invalid_request_error",
			},
		},
	}
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
