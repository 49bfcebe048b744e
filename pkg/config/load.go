package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// An empty path yields a default configuration; the file is optional because
// the canonical interface of the relay is its environment variables.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from an optional YAML file
// and applies environment variable overrides. The upstream and auth sections
// use the canonical variable names the relay has always been driven by
// (OPENAI_API_KEY, AUTH_SECRET_KEY, TIMEOUT_MS, ...); server and telemetry
// fields follow the HERMES_SECTION_FIELD convention. Environment variables
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file (when a path is given)
// 2. Apply environment variable overrides
// 3. Apply default values
// 4. Validate the final configuration
//
// Defaults run after the environment so that mode-dependent defaults (the
// model identifier) see the credentials that environment variables select.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Upstream credentials and endpoints (canonical names)
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.Upstream.APIKey = val
	}
	if val := os.Getenv("OPENAI_ACCESS_TOKEN"); val != "" {
		cfg.Upstream.AccessToken = val
	}
	if val := os.Getenv("OPENAI_API_MODEL"); val != "" {
		cfg.Upstream.Model = val
	}
	if val := os.Getenv("OPENAI_API_BASE_URL"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv("API_REVERSE_PROXY"); val != "" {
		cfg.Upstream.ReverseProxyURL = val
	}
	if val := os.Getenv("TIMEOUT_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			cfg.Upstream.Timeout = time.Duration(ms) * time.Millisecond
		}
	}

	// Outbound proxy (SOCKS wins over HTTPS_PROXY, resolved at client build)
	if val := os.Getenv("SOCKS_PROXY_HOST"); val != "" {
		cfg.Upstream.Proxy.SocksHost = val
	}
	if val := os.Getenv("SOCKS_PROXY_PORT"); val != "" {
		cfg.Upstream.Proxy.SocksPort = val
	}
	if val := os.Getenv("SOCKS_PROXY_USERNAME"); val != "" {
		cfg.Upstream.Proxy.SocksUsername = val
	}
	if val := os.Getenv("SOCKS_PROXY_PASSWORD"); val != "" {
		cfg.Upstream.Proxy.SocksPassword = val
	}
	if val := os.Getenv("HTTPS_PROXY"); val != "" {
		cfg.Upstream.Proxy.HTTPSProxy = val
	} else if val := os.Getenv("ALL_PROXY"); val != "" {
		cfg.Upstream.Proxy.HTTPSProxy = val
	}

	// Access control
	if val := os.Getenv("AUTH_SECRET_KEY"); val != "" {
		cfg.Auth.SecretKey = val
	}

	// Server overrides
	if val := os.Getenv("HERMES_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("HERMES_SERVER_STATIC_DIR"); val != "" {
		cfg.Server.StaticDir = val
	}
	if val := os.Getenv("HERMES_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("HERMES_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("HERMES_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("HERMES_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("HERMES_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("HERMES_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
			if !b {
				// Pin the choice so ApplyDefaults does not flip it back on.
				if cfg.Telemetry.Metrics.Path == "" {
					cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
				}
			}
		}
	}
	if val := os.Getenv("HERMES_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("HERMES_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}

	// Probe overrides ("none" disables the probe)
	if val := os.Getenv("HERMES_PROBE_SCHEDULE"); val != "" {
		cfg.Upstream.Probe.Schedule = val
	}
}
