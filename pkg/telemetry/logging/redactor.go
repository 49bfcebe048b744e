package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redactor scrubs upstream credentials from log output. The relay handles
// two secret shapes: sk- API keys and the JWT access tokens used by the
// conversation endpoint, plus whatever arrives inside Authorization headers.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Secret pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternAccessToken = "access_token"
	PatternBearerToken = "bearer_token"
)

// NewRedactor creates a Redactor with the built-in secret patterns.
func NewRedactor() *Redactor {
	patterns := []struct {
		name        string
		regex       string
		replacement string
	}{
		// OpenAI-style API keys
		{
			name:        PatternAPIKey,
			regex:       `sk-[a-zA-Z0-9]+`,
			replacement: "sk-***",
		},

		// JWT access tokens
		{
			name:        PatternAccessToken,
			regex:       `eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`,
			replacement: "eyJ***",
		},

		// Bearer credentials of any shape
		{
			name:        PatternBearerToken,
			regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},
	}

	r := &Redactor{}
	for _, p := range patterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	return r
}

// RedactString redacts secrets from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates a credential field. Values
// under such keys are masked whole, pattern match or not.
func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "passwd",
		"secret", "token", "api_key", "apikey",
		"auth", "authorization",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// MaskValue masks a sensitive value, keeping a short prefix for debugging.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "***"
	}
	return value[:4] + "***"
}

// RedactingHandler wraps a slog.Handler and scrubs secrets from records
// before they reach the inner handler. Wrapping at the handler level covers
// every logger derived from it, including loggers handed to other packages.
type RedactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps handler with secret redaction.
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	return &RedactingHandler{
		inner:    handler,
		redactor: NewRedactor(),
	}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler. It rewrites the record with redacted
// message and attribute values.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, h.redactor.RedactString(record.Message), record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.redactAttr(attr))
		return true
	})

	return h.inner.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = h.redactAttr(attr)
	}

	return &RedactingHandler{
		inner:    h.inner.WithAttrs(redacted),
		redactor: h.redactor,
	}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		inner:    h.inner.WithGroup(name),
		redactor: h.redactor,
	}
}

// redactAttr redacts a single attribute, recursing into groups.
func (h *RedactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	if h.redactor.isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, MaskValue(attr.Value.String()))
	}

	switch attr.Value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, h.redactor.RedactString(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		redacted := make([]slog.Attr, len(group))
		for i, member := range group {
			redacted[i] = h.redactAttr(member)
		}
		values := make([]any, len(redacted))
		for i, member := range redacted {
			values[i] = member
		}
		return slog.Group(attr.Key, values...)
	default:
		return attr
	}
}
