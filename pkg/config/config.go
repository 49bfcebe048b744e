package config

import "time"

// Config is the root configuration structure for Hermes.
// It contains all configuration sections for the HTTP relay server, the
// upstream chat service, authentication, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and static asset serving.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the upstream chat-completion
	// service, including credentials, mode selection, and outbound proxying.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Auth contains access control configuration for the relay endpoints.
	Auth AuthConfig `yaml:"auth"`

	// Telemetry contains observability configuration including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch enables hot-reloading of this configuration file. Fields that
	// cannot change at runtime (credentials, upstream mode, proxy endpoints)
	// are reported but not applied.
	// Default: false
	Watch bool `yaml:"watch"`
}

// ServerConfig contains configuration for the HTTP relay server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "0.0.0.0:3002", "127.0.0.1:3002").
	// Default: "0.0.0.0:3002"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Streaming replies must fit inside this window, so it is
	// sized from the upstream timeout plus headroom when left unset.
	// Default: upstream timeout + 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the
	// request line. It does not limit the size of the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// StaticDir is the directory the built web client is served from at the
	// root path. Serving is skipped when the directory does not exist.
	// Default: "./public"
	StaticDir string `yaml:"static_dir"`

	// CORS contains Cross-Origin Resource Sharing configuration. The relay
	// always answers CORS; these fields only shape the emitted headers.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
// The relay is designed to sit behind an arbitrary web origin, so the
// allow-origin header is always emitted.
type CORSConfig struct {
	// AllowedOrigins is the list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request caching.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`
}

// UpstreamConfig contains configuration for the upstream chat service.
// Exactly one of APIKey or AccessToken must be set; APIKey wins when both
// are present. The selected mode is fixed for the life of the process.
type UpstreamConfig struct {
	// APIKey is the chat-completions API key. When set, the relay talks to
	// the official chat-completions API.
	// Environment: OPENAI_API_KEY
	APIKey string `yaml:"api_key"`

	// AccessToken is the session access token for the unofficial
	// conversation endpoint. Used only when APIKey is empty.
	// Environment: OPENAI_ACCESS_TOKEN
	AccessToken string `yaml:"access_token"`

	// Model is the upstream model identifier.
	// Default: "gpt-3.5-turbo" (API-key mode),
	// "text-davinci-002-render-sha" (access-token mode)
	// Environment: OPENAI_API_MODEL
	Model string `yaml:"model"`

	// BaseURL is the chat-completions API base URL, with or without a
	// trailing "/v1" segment. Only used in API-key mode.
	// Default: "https://api.openai.com"
	// Environment: OPENAI_API_BASE_URL
	BaseURL string `yaml:"base_url"`

	// ReverseProxyURL is the conversation endpoint used in access-token
	// mode.
	// Default: "https://ai.fakeopen.com/api/conversation"
	// Environment: API_REVERSE_PROXY
	ReverseProxyURL string `yaml:"reverse_proxy_url"`

	// Timeout bounds every upstream exchange, including streaming ones.
	// Default: 30s
	// Environment: TIMEOUT_MS (integer milliseconds)
	Timeout time.Duration `yaml:"timeout"`

	// SystemPrompt is the system message sent when a request carries none.
	// Only used in API-key mode.
	// Default: "You are a helpful assistant. Answer as concisely as possible."
	SystemPrompt string `yaml:"system_prompt"`

	// Temperature is the default sampling temperature for requests that do
	// not specify one.
	// Default: 0.8
	Temperature float32 `yaml:"temperature"`

	// TopP is the default nucleus sampling value for requests that do not
	// specify one.
	// Default: 1.0
	TopP float32 `yaml:"top_p"`

	// MaxModelTokens is the upstream context window used to budget how much
	// conversation history is replayed in API-key mode.
	// Default: 4096
	MaxModelTokens int `yaml:"max_model_tokens"`

	// MaxReplyTokens is the share of the context window reserved for the
	// reply when budgeting history.
	// Default: 1024
	MaxReplyTokens int `yaml:"max_reply_tokens"`

	// HistorySize caps the number of messages retained for multi-turn
	// context reconstruction in API-key mode. Oldest entries are evicted.
	// Default: 10000
	HistorySize int `yaml:"history_size"`

	// Proxy contains outbound proxy configuration for upstream calls.
	Proxy OutboundProxyConfig `yaml:"proxy"`

	// Probe contains the scheduled upstream reachability probe configuration.
	Probe ProbeConfig `yaml:"probe"`
}

// OutboundProxyConfig contains outbound proxy settings for upstream calls.
// A SOCKS endpoint takes priority over an HTTPS proxy; with neither set,
// connections are direct.
type OutboundProxyConfig struct {
	// SocksHost is the SOCKS5 proxy host. Both SocksHost and SocksPort must
	// be set for the SOCKS proxy to be used.
	// Environment: SOCKS_PROXY_HOST
	SocksHost string `yaml:"socks_host"`

	// SocksPort is the SOCKS5 proxy port.
	// Environment: SOCKS_PROXY_PORT
	SocksPort string `yaml:"socks_port"`

	// SocksUsername is the optional SOCKS5 username.
	// Environment: SOCKS_PROXY_USERNAME
	SocksUsername string `yaml:"socks_username"`

	// SocksPassword is the optional SOCKS5 password.
	// Environment: SOCKS_PROXY_PASSWORD
	SocksPassword string `yaml:"socks_password"`

	// HTTPSProxy is an HTTP CONNECT proxy URL, consulted when no SOCKS
	// endpoint is configured.
	// Environment: HTTPS_PROXY (ALL_PROXY as fallback)
	HTTPSProxy string `yaml:"https_proxy"`
}

// ProbeConfig contains the scheduled upstream reachability probe settings.
type ProbeConfig struct {
	// Schedule is a cron expression (robfig/cron syntax, "@every 5m" style
	// descriptors included). An empty string or "none" disables the probe.
	// Default: "@every 5m"
	Schedule string `yaml:"schedule"`

	// Timeout bounds a single probe request.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive probe failures before
	// the upstream is reported unhealthy.
	// Default: 3
	FailureThreshold int `yaml:"failure_threshold"`
}

// AuthConfig contains access control configuration for the relay endpoints.
type AuthConfig struct {
	// SecretKey is the shared secret clients must present as a bearer token.
	// An empty value disables authentication entirely.
	// Environment: AUTH_SECRET_KEY
	SecretKey string `yaml:"secret_key"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets scrubs API keys and bearer tokens from log output.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "hermes"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration
	// (seconds).
	// Default: [0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP/gRPC trace collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to exported traces.
	// Default: "hermes"
	ServiceName string `yaml:"service_name"`

	// Insecure disables transport security on the exporter connection.
	// Set it for plain-text collectors on localhost.
	// Default: false
	Insecure bool `yaml:"insecure"`
}
