package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"lattice-hq/hermes/pkg/config"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() unexpected error = %v", err)
	}

	logger.Info("relay starting", "listen", "127.0.0.1:3002")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "relay starting" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["listen"] != "127.0.0.1:3002" {
		t.Errorf("unexpected listen attr: %v", entry["listen"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() unexpected error = %v", err)
	}

	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") {
		t.Errorf("expected text format output, got %q", out)
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() unexpected error = %v", err)
	}

	logger.Info("filtered out")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn should pass at warn level")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "verbose"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New(config.LoggingConfig{Format: "logfmt"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", RedactSecrets: true}, &buf)
	if err != nil {
		t.Fatalf("New() unexpected error = %v", err)
	}

	logger.Info("upstream configured", "key_hint", "using sk-abc123xyz for requests")

	out := buf.String()
	if strings.Contains(out, "sk-abc123xyz") {
		t.Errorf("API key leaked into log output: %s", out)
	}
	if !strings.Contains(out, "sk-***") {
		t.Errorf("expected redaction marker, got %s", out)
	}
}

func TestSetLevel(t *testing.T) {
	defer processLevel.Set(slog.LevelInfo)

	var buf bytes.Buffer
	logger, err := build(config.LoggingConfig{Format: "json"}, &buf, processLevel)
	if err != nil {
		t.Fatalf("build() unexpected error = %v", err)
	}

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) unexpected error = %v", err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at error level, got %q", buf.String())
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) unexpected error = %v", err)
	}
	logger.Debug("loud")
	if buf.Len() == 0 {
		t.Error("debug should pass after lowering the level")
	}

	if err := SetLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"ERROR", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
