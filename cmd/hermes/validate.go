package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"lattice-hq/hermes/pkg/cli"
	"lattice-hq/hermes/pkg/config"
	"lattice-hq/hermes/pkg/telemetry/logging"
	"lattice-hq/hermes/pkg/upstream"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration, run validation, and print the effective settings.

The printed snapshot shows the configuration after file values, environment
variables, and defaults have been merged, the same way the run command sees
it. Credentials and the access secret are masked.

Examples:
  # Validate the environment-driven configuration
  OPENAI_API_KEY=sk-... hermes validate

  # Validate a config file
  hermes validate --config /etc/hermes/config.yaml

  # Print the effective settings as JSON
  hermes validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// configSnapshot is the printable view of an effective configuration.
// Credential fields hold masked values only.
type configSnapshot struct {
	Listen          string `json:"listen"`
	StaticDir       string `json:"static_dir,omitempty"`
	Mode            string `json:"mode"`
	Model           string `json:"model"`
	APIKey          string `json:"api_key,omitempty"`
	AccessToken     string `json:"access_token,omitempty"`
	BaseURL         string `json:"base_url,omitempty"`
	ReverseProxyURL string `json:"reverse_proxy_url,omitempty"`
	TimeoutMs       int64  `json:"timeout_ms"`
	AuthSecret      string `json:"auth_secret,omitempty"`
	LogLevel        string `json:"log_level"`
	LogFormat       string `json:"log_format"`
	MetricsPath     string `json:"metrics_path,omitempty"`
	TracingEndpoint string `json:"tracing_endpoint,omitempty"`
	ProbeSchedule   string `json:"probe_schedule,omitempty"`
	Watch           bool   `json:"watch"`
}

// newConfigSnapshot flattens cfg into display form, masking secrets with the
// same helper the log redactor uses.
func newConfigSnapshot(cfg *config.Config) configSnapshot {
	mode := upstream.ModeReverseProxy
	if cfg.Upstream.APIKey != "" {
		mode = upstream.ModeChatAPI
	}

	snap := configSnapshot{
		Listen:        cfg.Server.ListenAddress,
		StaticDir:     cfg.Server.StaticDir,
		Mode:          string(mode),
		Model:         cfg.Upstream.Model,
		APIKey:        logging.MaskValue(cfg.Upstream.APIKey),
		AccessToken:   logging.MaskValue(cfg.Upstream.AccessToken),
		TimeoutMs:     cfg.Upstream.Timeout.Milliseconds(),
		AuthSecret:    logging.MaskValue(cfg.Auth.SecretKey),
		LogLevel:      cfg.Telemetry.Logging.Level,
		LogFormat:     cfg.Telemetry.Logging.Format,
		ProbeSchedule: cfg.Upstream.Probe.Schedule,
		Watch:         cfg.Watch,
	}

	switch mode {
	case upstream.ModeChatAPI:
		snap.BaseURL = cfg.Upstream.BaseURL
	case upstream.ModeReverseProxy:
		snap.ReverseProxyURL = cfg.Upstream.ReverseProxyURL
	}

	if cfg.Telemetry.Metrics.Enabled {
		snap.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	if cfg.Telemetry.Tracing.Enabled {
		snap.TracingEndpoint = cfg.Telemetry.Tracing.Endpoint
	}
	return snap
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}

	snap := newConfigSnapshot(cfg)

	switch validateFlags.format {
	case "json":
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, snap); err != nil {
			return cli.NewCommandError("validate", err)
		}
	case "text", "":
		fmt.Println("✓ Configuration valid")
		fmt.Println()
		printSnapshot(snap)
	default:
		return fmt.Errorf("unsupported format: %s", validateFlags.format)
	}

	return nil
}

func printSnapshot(snap configSnapshot) {
	fmt.Printf("  listen:           %s\n", snap.Listen)
	if snap.StaticDir != "" {
		fmt.Printf("  static_dir:       %s\n", snap.StaticDir)
	}
	fmt.Printf("  mode:             %s\n", snap.Mode)
	fmt.Printf("  model:            %s\n", snap.Model)
	if snap.APIKey != "" {
		fmt.Printf("  api_key:          %s\n", snap.APIKey)
	}
	if snap.AccessToken != "" {
		fmt.Printf("  access_token:     %s\n", snap.AccessToken)
	}
	if snap.BaseURL != "" {
		fmt.Printf("  base_url:         %s\n", snap.BaseURL)
	}
	if snap.ReverseProxyURL != "" {
		fmt.Printf("  reverse_proxy:    %s\n", snap.ReverseProxyURL)
	}
	fmt.Printf("  timeout_ms:       %d\n", snap.TimeoutMs)
	if snap.AuthSecret != "" {
		fmt.Printf("  auth_secret:      %s\n", snap.AuthSecret)
	}
	fmt.Printf("  log_level:        %s\n", snap.LogLevel)
	fmt.Printf("  log_format:       %s\n", snap.LogFormat)
	if snap.MetricsPath != "" {
		fmt.Printf("  metrics_path:     %s\n", snap.MetricsPath)
	}
	if snap.TracingEndpoint != "" {
		fmt.Printf("  tracing_endpoint: %s\n", snap.TracingEndpoint)
	}
	if snap.ProbeSchedule != "" {
		fmt.Printf("  probe_schedule:   %s\n", snap.ProbeSchedule)
	}
	fmt.Printf("  watch:            %t\n", snap.Watch)
}
