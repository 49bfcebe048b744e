package upstream

import "time"

// Mode identifies which upstream variant the relay was started with.
// The label is reported verbatim to clients through /session and /config.
type Mode string

const (
	// ModeChatAPI is the API-key variant backed by the chat-completions API.
	ModeChatAPI Mode = "ChatAPI"

	// ModeReverseProxy is the access-token variant backed by a conversation
	// reverse proxy.
	ModeReverseProxy Mode = "ReverseProxy"
)

// Message role constants shared by both variants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)

// Request is one prompt to relay upstream.
type Request struct {
	// Prompt is the user's message text.
	Prompt string

	// ConversationID continues an existing upstream conversation.
	// Access-token mode only; ignored by the API-key variant.
	ConversationID string

	// ParentMessageID is the message this turn replies to. In API-key mode
	// it keys the adapter's conversation store; in access-token mode it is
	// passed through to the upstream conversation endpoint.
	ParentMessageID string

	// SystemMessage overrides the configured system prompt for this turn.
	// API-key mode only.
	SystemMessage string

	// Temperature overrides the configured sampling temperature.
	Temperature *float32

	// TopP overrides the configured nucleus sampling value.
	TopP *float32
}

// Reply is the state of an assistant reply after one streaming update.
// The adapter emits a Reply per upstream chunk carrying the cumulative text
// and the increment since the previous update; the final Reply carries a
// finish reason. A Reply with Error set reports a mid-stream failure and is
// always the last element on the stream.
type Reply struct {
	// ID identifies the reply message, stable across all updates.
	ID string

	// Text is the cumulative reply text so far.
	Text string

	// Delta is the text added by this update.
	Delta string

	// Role is the author of the reply, always "assistant".
	Role string

	// ConversationID is the upstream conversation identifier
	// (access-token mode).
	ConversationID string

	// ParentMessageID identifies the message this reply responds to.
	ParentMessageID string

	// FinishReason is set on the final update ("stop", "length").
	FinishReason string

	// Error is set instead of the reply fields when the exchange fails.
	Error error
}

// Health is a snapshot of the prober's view of the upstream.
type Health struct {
	// Healthy reports whether the upstream passed its recent probes.
	Healthy bool

	// LastCheck is the time of the most recent probe, zero before the
	// first probe has run.
	LastCheck time.Time

	// LastError is the most recent probe failure, nil when healthy.
	LastError error

	// ConsecutiveFailures counts sequential probe failures.
	ConsecutiveFailures int
}
