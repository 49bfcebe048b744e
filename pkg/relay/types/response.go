package types

// ChatMessage is one unit of an assistant reply, either a streaming partial
// or the final message. Every chunk carries the cumulative text so far, so a
// client may render only the latest chunk it has received.
type ChatMessage struct {
	// ID uniquely identifies this reply message.
	ID string `json:"id"`

	// Text is the cumulative reply text up to this chunk.
	Text string `json:"text"`

	// Delta is the text appended since the previous chunk.
	Delta string `json:"delta,omitempty"`

	// Role is the author of the message, "assistant" for replies.
	Role string `json:"role"`

	// ConversationID identifies the upstream conversation (access-token mode).
	ConversationID string `json:"conversationId,omitempty"`

	// ParentMessageID identifies the message this reply responds to.
	ParentMessageID string `json:"parentMessageId,omitempty"`

	// FinishReason explains why generation stopped ("stop", "length").
	// Present only on the final chunk.
	FinishReason string `json:"finishReason,omitempty"`
}

// NextContext returns the correlation state a client echoes to continue the
// conversation: the reply's own ID becomes the next turn's parent.
func (m *ChatMessage) NextContext() ChatContext {
	return ChatContext{
		ConversationID:  m.ConversationID,
		ParentMessageID: m.ID,
	}
}

// StreamChunk is one newline-delimited line of the /chat-process stream.
// Exactly one of OK or Error is set; consumers switch on which tag is
// present.
type StreamChunk struct {
	// OK carries a partial or final reply message.
	OK *ChatMessage `json:"ok,omitempty"`

	// Error carries an in-band failure message. The stream ends after it.
	Error string `json:"error,omitempty"`
}

// ModelConfig is the runtime configuration snapshot returned by POST /config.
type ModelConfig struct {
	// APIModel is the active upstream mode label, "ChatAPI" or "ReverseProxy".
	APIModel string `json:"apiModel"`

	// Model is the underlying model identifier sent upstream.
	Model string `json:"model"`

	// ReverseProxy is the conversation endpoint URL (access-token mode only).
	ReverseProxy string `json:"reverseProxy,omitempty"`

	// TimeoutMs is the upstream request deadline in milliseconds.
	TimeoutMs int `json:"timeoutMs"`

	// SocksProxy is the SOCKS5 endpoint as host:port, empty when unset.
	SocksProxy string `json:"socksProxy,omitempty"`

	// HTTPSProxy is the HTTP CONNECT proxy URL, empty when unset.
	HTTPSProxy string `json:"httpsProxy,omitempty"`

	// Balance is the remaining account credit, "-" when unavailable.
	Balance string `json:"balance"`
}

// SessionData is the payload returned by POST /session.
type SessionData struct {
	// Auth reports whether the server requires a secret key.
	Auth bool `json:"auth"`

	// Model is the active upstream mode label, "ChatAPI" or "ReverseProxy".
	Model string `json:"model"`
}
