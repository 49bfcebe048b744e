package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lattice-hq/hermes/pkg/relay/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (1MB).
	// Chat prompts are small; anything larger is rejected before parsing.
	MaxRequestBodySize = 1 * 1024 * 1024

	// AuthorizationHeader is the HTTP header carrying the client secret key.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseChatProcessRequest parses an HTTP request body into a
// ChatProcessRequest. It enforces the size limit, validates the JSON format,
// and validates field constraints.
//
// Example usage:
//
//	req, err := ParseChatProcessRequest(r)
//	if err != nil {
//	    stream.WriteError(ErrorText(err))
//	    return
//	}
func ParseChatProcessRequest(r *http.Request) (*types.ChatProcessRequest, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}

	var req types.ChatProcessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Param:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		if valErr, ok := err.(*types.ValidationError); ok {
			return nil, &RequestError{
				Message: valErr.Message,
				Param:   valErr.Field,
			}
		}
		return nil, err
	}

	return &req, nil
}

// ParseVerifyRequest parses an HTTP request body into a VerifyRequest.
// Malformed JSON is an error; the handler treats it the same as an empty
// token.
func ParseVerifyRequest(r *http.Request) (*types.VerifyRequest, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}

	var req types.VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Param:   "body",
		}
	}

	return &req, nil
}

// readBody reads the request body under the size limit.
func readBody(r *http.Request) ([]byte, error) {
	limitedReader := io.LimitReader(r.Body, MaxRequestBodySize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) >= MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Param:   "body",
		}
	}

	return body, nil
}

// ExtractBearerToken extracts the bearer token from the Authorization header.
//
// Example:
//
//	Authorization: Bearer my-secret-key
//
// If the header is missing or malformed, an empty string is returned.
func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string and the middleware
// generates one.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToEnvelope converts a RequestError to a Fail envelope.
func (e *RequestError) ToEnvelope() *types.Envelope {
	return types.NewFail(e.Message)
}
