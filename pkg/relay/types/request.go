package types

import "strings"

// ChatContext carries conversation correlation state between turns. The
// client copies both values from the previous reply so the next prompt
// continues the same conversation.
type ChatContext struct {
	// ConversationID identifies the upstream conversation. Used as an opaque
	// continuation token in access-token mode; unused in API-key mode.
	ConversationID string `json:"conversationId,omitempty"`

	// ParentMessageID identifies the message this turn replies to. In API-key
	// mode it keys the adapter's local history store; in access-token mode it
	// is passed through to the upstream conversation endpoint.
	ParentMessageID string `json:"parentMessageId,omitempty"`
}

// ChatProcessRequest is the request body for POST /chat-process.
type ChatProcessRequest struct {
	// Prompt is the user's message text.
	Prompt string `json:"prompt"`

	// Options is the ChatContext echoed from the previous reply.
	// Zero for the first turn of a conversation.
	Options ChatContext `json:"options"`

	// SystemMessage overrides the configured system prompt for this turn.
	// Optional, API-key mode only.
	SystemMessage string `json:"systemMessage,omitempty"`

	// Temperature controls randomness in the reply (0.0 to 2.0).
	// Optional, defaults to 0.8.
	Temperature *float32 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	// Optional, defaults to 1.0.
	TopP *float32 `json:"top_p,omitempty"`
}

// Validate validates the chat process request.
// It checks that required fields are present and values are within
// acceptable ranges.
func (r *ChatProcessRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{
			Field:   "prompt",
			Message: "prompt is required",
		}
	}

	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return &ValidationError{
			Field:   "temperature",
			Message: "temperature must be between 0.0 and 2.0",
		}
	}

	if r.TopP != nil && (*r.TopP < 0.0 || *r.TopP > 1.0) {
		return &ValidationError{
			Field:   "top_p",
			Message: "top_p must be between 0.0 and 1.0",
		}
	}

	return nil
}

// VerifyRequest is the request body for POST /verify.
type VerifyRequest struct {
	// Token is the secret key the client wants to check.
	Token string `json:"token"`
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
