// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package builds the process logger on Go's standard log/slog
// package and provides:
//   - Structured logging with JSON and text formats
//   - Automatic credential redaction (API keys, access tokens, bearer headers)
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Build and install the process logger
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//	if err != nil {
//	    return err
//	}
//
//	// Log structured data
//	logger.Info("request completed",
//	    "request_id", "req-123",
//	    "api_key", "sk-abc123",  // Automatically redacted
//	    "latency_ms", 1234,
//	)
//
// # Secret Redaction
//
// Credentials are scrubbed from log records when RedactSecrets is enabled:
//
//   - API keys: sk-abc123xyz → sk-***
//   - Access tokens: eyJhbGciOi... → eyJ***
//   - Bearer headers: Bearer abc.def → Bearer ***
//   - Values under credential-named keys (secret, token, authorization) are
//     masked whole
//
// Redaction wraps the slog handler, so it also covers loggers handed to
// other packages and loggers derived with With.
package logging
