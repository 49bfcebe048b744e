// Package config provides configuration management for Hermes.
//
// This package handles loading, validating, and managing configuration from
// an optional YAML file with environment variable overrides. The environment
// is the canonical interface: a Hermes process is fully configurable without
// any file on disk.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From an optional YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// An empty path is valid and yields defaults plus the environment.
//
// # Environment Variables
//
// The upstream and auth sections are driven by the canonical variables the
// relay has always used:
//
//   - OPENAI_API_KEY selects API-key mode and carries its credential
//   - OPENAI_ACCESS_TOKEN selects access-token mode (API key wins when both set)
//   - OPENAI_API_MODEL overrides the upstream model identifier
//   - OPENAI_API_BASE_URL overrides the chat-completions base URL
//   - API_REVERSE_PROXY overrides the conversation endpoint (token mode)
//   - AUTH_SECRET_KEY enables bearer authentication on protected routes
//   - TIMEOUT_MS bounds upstream exchanges (integer milliseconds)
//   - SOCKS_PROXY_HOST / SOCKS_PROXY_PORT select a SOCKS5 outbound proxy,
//     optionally with SOCKS_PROXY_USERNAME / SOCKS_PROXY_PASSWORD
//   - HTTPS_PROXY (or ALL_PROXY) selects an HTTP CONNECT outbound proxy
//
// Server and telemetry fields follow the HERMES_SECTION_FIELD convention,
// e.g. HERMES_SERVER_LISTEN_ADDRESS or HERMES_LOGGING_LEVEL. Environment
// variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Values from the YAML file (when present)
//  2. Environment variable overrides
//  3. Default values for whatever is still unset
//  4. Validation (fails fast if invalid)
//
// Defaults run last because some of them depend on the selected upstream
// mode, which the environment may decide.
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. The most
// important rule: at least one upstream credential must be present, so a
// process with neither OPENAI_API_KEY nor OPENAI_ACCESS_TOKEN never starts.
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - upstream: missing OPENAI_API_KEY or OPENAI_ACCESS_TOKEN: one credential is required
//	  - telemetry.logging.level: invalid log level "verbose" (expected debug, info, warn, or error)
//
// # Hot Reload
//
// When watch is enabled, a Watcher observes the configuration file and swaps
// the singleton on change. Only runtime-safe fields take effect; changes to
// startup-only fields (credentials, proxy endpoints, listen address) are
// logged as requiring a restart.
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton uses read-write
// locks to allow concurrent reads while protecting against concurrent writes
// during reload operations.
package config
