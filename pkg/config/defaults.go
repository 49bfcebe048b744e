package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:3002"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteHeadroom   = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultStaticDir       = "./public"

	// CORS defaults
	DefaultCORSMaxAge = 3600 // 1 hour

	// Upstream defaults
	DefaultAPIModel        = "gpt-3.5-turbo"
	DefaultProxyModel      = "text-davinci-002-render-sha"
	DefaultAPIBaseURL      = "https://api.openai.com"
	DefaultReverseProxyURL = "https://ai.fakeopen.com/api/conversation"
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultSystemPrompt    = "You are a helpful assistant. Answer as concisely as possible."
	DefaultTemperature     = 0.8
	DefaultTopP            = 1.0
	DefaultMaxModelTokens  = 4096
	DefaultMaxReplyTokens  = 1024
	DefaultHistorySize     = 10000

	// Probe defaults
	DefaultProbeSchedule         = "@every 5m"
	DefaultProbeTimeout          = 10 * time.Second
	DefaultProbeFailureThreshold = 3

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "hermes"
	DefaultMetricsSubsystem = "relay"
	DefaultTracingSampler   = "ratio"
	DefaultTracingRatio     = 0.1
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingService   = "hermes"
)

// DefaultRequestDurationBuckets are the histogram buckets (seconds) used for
// request duration metrics when none are configured. The tail is long enough
// to cover full streaming replies.
var DefaultRequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = DefaultStaticDir
	}

	applyCORSDefaults(&cfg.Server.CORS)
	applyUpstreamDefaults(&cfg.Upstream)

	// The write timeout must outlive a full streaming reply, so it is
	// derived from the upstream timeout unless set explicitly.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = cfg.Upstream.Timeout + DefaultWriteHeadroom
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

// applyUpstreamDefaults applies default values to upstream configuration.
// The model default depends on the selected mode: the official API and the
// reverse-proxy conversation endpoint speak different model families.
func applyUpstreamDefaults(up *UpstreamConfig) {
	if up.Model == "" {
		if up.APIKey == "" && up.AccessToken != "" {
			up.Model = DefaultProxyModel
		} else {
			up.Model = DefaultAPIModel
		}
	}
	if up.BaseURL == "" {
		up.BaseURL = DefaultAPIBaseURL
	}
	if up.ReverseProxyURL == "" {
		up.ReverseProxyURL = DefaultReverseProxyURL
	}
	if up.Timeout == 0 {
		up.Timeout = DefaultUpstreamTimeout
	}
	if up.SystemPrompt == "" {
		up.SystemPrompt = DefaultSystemPrompt
	}
	if up.Temperature == 0 {
		up.Temperature = DefaultTemperature
	}
	if up.TopP == 0 {
		up.TopP = DefaultTopP
	}
	if up.MaxModelTokens == 0 {
		up.MaxModelTokens = DefaultMaxModelTokens
	}
	if up.MaxReplyTokens == 0 {
		up.MaxReplyTokens = DefaultMaxReplyTokens
	}
	if up.HistorySize == 0 {
		up.HistorySize = DefaultHistorySize
	}

	if up.Probe.Schedule == "" && up.Probe.Timeout == 0 && up.Probe.FailureThreshold == 0 {
		// Untouched section: enable the probe with its stock schedule. An
		// explicitly configured section with an empty schedule stays off.
		up.Probe.Schedule = DefaultProbeSchedule
	}
	if up.Probe.Timeout == 0 {
		up.Probe.Timeout = DefaultProbeTimeout
	}
	if up.Probe.FailureThreshold == 0 {
		up.Probe.FailureThreshold = DefaultProbeFailureThreshold
	}
}

// applyTelemetryDefaults applies default values to telemetry configuration.
// RedactSecrets and Metrics.Enabled default to true; a bool zero value
// cannot be told apart from an explicit false, so the default is applied
// only when the surrounding section is untouched.
func applyTelemetryDefaults(t *TelemetryConfig) {
	loggingUntouched := t.Logging == LoggingConfig{}
	if loggingUntouched {
		t.Logging.RedactSecrets = true
	}
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if !t.Metrics.Enabled {
		untouched := t.Metrics.Path == "" && t.Metrics.Namespace == "" &&
			t.Metrics.Subsystem == "" && len(t.Metrics.RequestDurationBuckets) == 0
		if untouched {
			t.Metrics.Enabled = DefaultMetricsEnabled
		}
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.RequestDurationBuckets) == 0 {
		t.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingRatio
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingService
	}
}
