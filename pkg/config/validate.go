package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// The credential requirement lives here: a configuration with neither an API
// key nor an access token is rejected, which keeps the process from ever
// starting without an upstream to talk to.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

// validateUpstream validates upstream configuration.
func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.APIKey == "" && cfg.AccessToken == "" {
		errs = append(errs, FieldError{
			Field:   "upstream",
			Message: "missing OPENAI_API_KEY or OPENAI_ACCESS_TOKEN: one credential is required",
		})
	}

	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.model",
			Message: "model is required",
		})
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.timeout",
			Message: "timeout must be positive",
		})
	}

	errs = append(errs, validateURL("upstream.base_url", cfg.BaseURL)...)
	errs = append(errs, validateURL("upstream.reverse_proxy_url", cfg.ReverseProxyURL)...)
	if cfg.Proxy.HTTPSProxy != "" {
		errs = append(errs, validateURL("upstream.proxy.https_proxy", cfg.Proxy.HTTPSProxy)...)
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "upstream.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}
	if cfg.TopP < 0 || cfg.TopP > 1 {
		errs = append(errs, FieldError{
			Field:   "upstream.top_p",
			Message: "top_p must be between 0 and 1",
		})
	}

	if cfg.MaxReplyTokens >= cfg.MaxModelTokens {
		errs = append(errs, FieldError{
			Field:   "upstream.max_reply_tokens",
			Message: "max reply tokens must be smaller than the model context window",
		})
	}

	if cfg.Probe.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.probe.timeout",
			Message: "probe timeout must be positive",
		})
	}
	if cfg.Probe.FailureThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "upstream.probe.failure_threshold",
			Message: "failure threshold must be at least 1",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (expected debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (expected json or text)", cfg.Logging.Format),
		})
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (expected always, never, or ratio)", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}

// validateURL checks that a URL parses and carries an http or https scheme.
func validateURL(field, raw string) []FieldError {
	u, err := url.Parse(raw)
	if err != nil {
		return []FieldError{{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []FieldError{{Field: field, Message: fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme)}}
	}
	if u.Host == "" {
		return []FieldError{{Field: field, Message: "URL host is required"}}
	}
	return nil
}
