package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearUpstreamEnv blanks every canonical environment variable so a test
// observes only what it sets itself.
func clearUpstreamEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_ACCESS_TOKEN", "OPENAI_API_MODEL",
		"OPENAI_API_BASE_URL", "API_REVERSE_PROXY", "AUTH_SECRET_KEY",
		"TIMEOUT_MS", "SOCKS_PROXY_HOST", "SOCKS_PROXY_PORT",
		"SOCKS_PROXY_USERNAME", "SOCKS_PROXY_PASSWORD",
		"HTTPS_PROXY", "ALL_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "127.0.0.1:4000"
  read_timeout: "60s"

upstream:
  api_key: "sk-test-123"
  model: "gpt-4"
  timeout: "45s"

auth:
  secret_key: "topsecret"

telemetry:
  logging:
    level: "debug"
    format: "text"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:4000" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:4000", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Upstream.APIKey != "sk-test-123" {
		t.Errorf("expected API key %q, got %q", "sk-test-123", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Model != "gpt-4" {
		t.Errorf("expected model %q, got %q", "gpt-4", cfg.Upstream.Model)
	}
	if cfg.Upstream.Timeout != 45*time.Second {
		t.Errorf("expected upstream timeout %v, got %v", 45*time.Second, cfg.Upstream.Timeout)
	}
	if cfg.Auth.SecretKey != "topsecret" {
		t.Errorf("expected secret key %q, got %q", "topsecret", cfg.Auth.SecretKey)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if err != nil && !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	malformedContent := `
upstream:
  api_key: "sk-test"
  invalid yaml here: [
`

	if err := os.WriteFile(configPath, []byte(malformedContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "127.0.0.1:4000"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error without credentials")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY or OPENAI_ACCESS_TOKEN") {
		t.Errorf("expected credential error, got: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides_EnvOnly(t *testing.T) {
	clearUpstreamEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env-key")
	t.Setenv("OPENAI_API_MODEL", "gpt-4o")
	t.Setenv("AUTH_SECRET_KEY", "env-secret")
	t.Setenv("TIMEOUT_MS", "5000")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config from environment: %v", err)
	}

	if cfg.Upstream.APIKey != "sk-env-key" {
		t.Errorf("expected API key %q, got %q", "sk-env-key", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Model != "gpt-4o" {
		t.Errorf("expected model %q, got %q", "gpt-4o", cfg.Upstream.Model)
	}
	if cfg.Auth.SecretKey != "env-secret" {
		t.Errorf("expected secret key %q, got %q", "env-secret", cfg.Auth.SecretKey)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, cfg.Upstream.Timeout)
	}
}

func TestLoadConfigWithEnvOverrides_EnvBeatsFile(t *testing.T) {
	clearUpstreamEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
upstream:
  api_key: "sk-from-file"
  model: "gpt-3.5-turbo"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Upstream.APIKey != "sk-from-env" {
		t.Errorf("expected env API key to win, got %q", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Model != "gpt-3.5-turbo" {
		t.Errorf("expected file model to survive, got %q", cfg.Upstream.Model)
	}
}

func TestLoadConfigWithEnvOverrides_NoCredentials(t *testing.T) {
	clearUpstreamEnv(t)

	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Fatal("expected error when neither credential is present")
	}
}

func TestLoadConfigWithEnvOverrides_TokenModeModelDefault(t *testing.T) {
	clearUpstreamEnv(t)
	t.Setenv("OPENAI_ACCESS_TOKEN", "eyJ-token")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Upstream.Model != DefaultProxyModel {
		t.Errorf("expected token-mode model default %q, got %q", DefaultProxyModel, cfg.Upstream.Model)
	}
	if cfg.Upstream.ReverseProxyURL != DefaultReverseProxyURL {
		t.Errorf("expected reverse proxy default %q, got %q", DefaultReverseProxyURL, cfg.Upstream.ReverseProxyURL)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidTimeoutIgnored(t *testing.T) {
	clearUpstreamEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TIMEOUT_MS", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Upstream.Timeout != DefaultUpstreamTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultUpstreamTimeout, cfg.Upstream.Timeout)
	}
}

func TestLoadConfigWithEnvOverrides_AllProxyFallback(t *testing.T) {
	clearUpstreamEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ALL_PROXY", "http://proxy.internal:8118")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Upstream.Proxy.HTTPSProxy != "http://proxy.internal:8118" {
		t.Errorf("expected ALL_PROXY fallback, got %q", cfg.Upstream.Proxy.HTTPSProxy)
	}
}

func TestLoadConfigWithEnvOverrides_HTTPSProxyBeatsAllProxy(t *testing.T) {
	clearUpstreamEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HTTPS_PROXY", "http://https-proxy:8118")
	t.Setenv("ALL_PROXY", "http://all-proxy:8118")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Upstream.Proxy.HTTPSProxy != "http://https-proxy:8118" {
		t.Errorf("expected HTTPS_PROXY to win, got %q", cfg.Upstream.Proxy.HTTPSProxy)
	}
}
