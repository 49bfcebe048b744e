package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// GenericFailureMessage is the user-facing fallback when an upstream failure
// carries no message of its own.
const GenericFailureMessage = "Please check the back-end console"

// statusMessages fixes the user-facing text for known upstream failure
// statuses. The texts are bilingual and rendered verbatim by the client UI,
// so they must not be reworded.
var statusMessages = map[int]string{
	http.StatusUnauthorized:        "[OpenAI] 提供错误的API密钥 | Incorrect API key provided",
	http.StatusForbidden:           "[OpenAI] 服务器拒绝访问，请稍后再试 | Server refused to access, please try again later",
	http.StatusInternalServerError: "[OpenAI] 服务器繁忙，请稍后再试 | Server is busy, please try again later",
	http.StatusBadGateway:          "[OpenAI] 错误的网关 | Bad Gateway",
	http.StatusServiceUnavailable:  "[OpenAI] 服务器繁忙，请稍后再试 | Server is busy, please try again later",
	http.StatusGatewayTimeout:      "[OpenAI] 网关超时 | Gateway Time-out",
}

// UpstreamError represents a failed upstream exchange.
// Message carries the user-facing text written into the stream's error chunk.
type UpstreamError struct {
	// Mode is the upstream variant that produced the error
	Mode Mode

	// StatusCode is the upstream HTTP status (0 if not applicable)
	StatusCode int

	// Message is the user-facing error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %q error (status %d): %s", e.Mode, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream %q error: %s", e.Mode, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NewStatusError builds an UpstreamError for an upstream HTTP failure.
// Known statuses take their fixed message regardless of what the upstream
// said; unknown statuses pass the upstream's own message through, or the
// generic fallback when it is empty.
func NewStatusError(mode Mode, statusCode int, upstreamMessage string, cause error) *UpstreamError {
	message, ok := statusMessages[statusCode]
	if !ok {
		message = upstreamMessage
		if message == "" {
			message = GenericFailureMessage
		}
	}
	return &UpstreamError{
		Mode:       mode,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// TimeoutError represents an upstream exchange that exceeded its deadline.
type TimeoutError struct {
	// Mode is the upstream variant where the timeout occurred
	Mode Mode

	// Timeout is the configured deadline
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %q request timed out after %s", e.Mode, e.Timeout)
}

// ParseError represents a malformed upstream response.
type ParseError struct {
	// Mode is the upstream variant that returned the malformed response
	Mode Mode

	// RawResponse is the payload that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream %q response parse error: %v", e.Mode, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// StreamError represents a failure while reading an upstream stream.
type StreamError struct {
	// Mode is the upstream variant where the error occurred
	Mode Mode

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream %q stream error: %s: %v", e.Mode, e.Message, e.Cause)
	}
	return fmt.Sprintf("upstream %q stream error: %s", e.Mode, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ErrorMessage returns the user-facing text for any upstream failure. An
// UpstreamError contributes its mapped message; every other error passes its
// own text through, falling back to the generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericFailureMessage
}
