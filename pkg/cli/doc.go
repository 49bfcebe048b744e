/*
Package cli provides command-line interface utilities for the hermes command.

Output Formatting:

Commands that print structured results (the effective configuration from
hermes validate, for instance) render through a Formatter:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, snapshot); err != nil {
		return err
	}

Errors:

ConfigError and CommandError wrap failures with the context a command-line
user needs (the config file path, the failing subcommand) while staying
transparent to errors.Is and errors.As.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
