package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"lattice-hq/hermes/pkg/config"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
)

// processLevel drives the verbosity of the logger installed by Setup.
// SetLevel adjusts it at runtime.
var processLevel = new(slog.LevelVar)

// Setup builds the process logger from configuration and installs it as the
// slog default, so packages logging through slog.Default pick it up.
//
// Example:
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//	if err != nil {
//	    return err
//	}
//	logger.Info("relay starting")
func Setup(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	processLevel.Set(level)

	logger, err := build(cfg, os.Stdout, processLevel)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return logger, nil
}

// New creates a logger writing to w with the level fixed from cfg. Secret
// redaction wraps the handler when enabled, so every consumer of the logger
// is covered regardless of how the log record was built.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return build(cfg, w, level)
}

// SetLevel changes the level of the process logger in place. Loggers built
// with New keep the level they were constructed with.
func SetLevel(levelStr string) error {
	level, err := parseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	processLevel.Set(level)
	return nil
}

// build assembles the handler stack shared by Setup and New.
func build(cfg config.LoggingConfig, w io.Writer, level slog.Leveler) (*slog.Logger, error) {
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	if cfg.RedactSecrets {
		handler = NewRedactingHandler(handler)
	}

	return slog.New(handler), nil
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch formatStr {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
