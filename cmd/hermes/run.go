package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"lattice-hq/hermes/pkg/cli"
	"lattice-hq/hermes/pkg/config"
	"lattice-hq/hermes/pkg/server"
	"lattice-hq/hermes/pkg/telemetry/logging"
	"lattice-hq/hermes/pkg/telemetry/metrics"
	"lattice-hq/hermes/pkg/telemetry/tracing"
	"lattice-hq/hermes/pkg/upstream"
)

var runFlags struct {
	listenAddress string
	staticDir     string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Hermes relay server",
	Long: `Start the Hermes relay server with the specified configuration.

The server accepts chat requests from the web client, relays them to the
configured upstream (chat-completions API or access-token conversation
proxy), and streams replies back as newline-delimited JSON.

Examples:
  # Start from environment variables alone
  OPENAI_API_KEY=sk-... hermes run

  # Start with a config file
  hermes run --config /etc/hermes/config.yaml

  # Override listen address
  hermes run --listen 0.0.0.0:8080

  # Validate config without starting the server
  hermes run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.staticDir, "static-dir", "", "override static asset directory")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.staticDir != "" {
		cfg.Server.StaticDir = runFlags.staticDir
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner()

	// Build the upstream client from the configured credentials
	client, err := upstream.NewClient(cfg.Upstream, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer client.Close()
	fmt.Printf("✓ Upstream client initialized (%s, model %s)\n", client.Mode(), client.Model())

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer tracer.Shutdown(context.Background())
	if tracer.Enabled() {
		fmt.Println("✓ Tracing enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Health probing against the upstream
	prober := upstream.NewProber(client, cfg.Upstream.Probe, logger, collector)
	if err := prober.Start(ctx); err != nil {
		slog.Warn("failed to start upstream prober", "error", err)
	}
	defer prober.Stop()

	// Hot-reload the config file when asked to
	if cfg.Watch && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			slog.Warn("failed to create config watcher", "error", err)
		} else {
			watcher.OnReload = func(before, after *config.Config) {
				if before.Telemetry.Logging.Level != after.Telemetry.Logging.Level {
					if err := logging.SetLevel(after.Telemetry.Logging.Level); err != nil {
						slog.Warn("failed to apply reloaded log level", "error", err)
					}
				}
			}
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("config watcher exited", "error", err)
				}
			}()
			defer watcher.Stop()
			fmt.Println("✓ Config watcher started")
		}
	}

	// Create the relay server
	srv := server.NewServer(cfg, client, prober, collector, tracer)

	// Start server in background goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for server to be ready
	if err := waitForServerReady(cfg.Server.ListenAddress, 5*time.Second); err != nil {
		select {
		case err := <-errChan:
			return cli.NewCommandError("run", err)
		default:
		}
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

func printBanner() {
	fmt.Printf("Hermes v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Println("Loading configuration from environment")
	}
	fmt.Println("✓ Configuration loaded")
}

// waitForServerReady polls the health endpoint until the server answers.
func waitForServerReady(address string, timeout time.Duration) error {
	url := fmt.Sprintf("http://%s/health", address)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("no answer on %s within %s", url, timeout)
}
