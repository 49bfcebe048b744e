package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "hermes",
	Short: "Hermes - streaming relay for a chat web client",
	Long: `Hermes is the backend relay for a chat web client. It accepts prompts over
a small JSON API, forwards them to the configured upstream (the
chat-completions API or an access-token conversation proxy), and streams
the growing reply back to the browser as newline-delimited JSON.

It serves:
  - POST /chat-process for the streaming chat relay
  - POST /config and /session for client bootstrap
  - POST /verify for access control
  - the built web client as static files

For more information, visit: https://github.com/lattice-hq/hermes`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional, environment variables still apply)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	// The completion command in completion.go replaces cobra's default
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
