// Hermes is the backend relay for a chat web client.
//
// It accepts chat prompts over a small JSON API, forwards them to the
// configured upstream (the chat-completions API or an access-token
// conversation proxy), and streams the growing reply back to the browser
// as newline-delimited JSON. The built web client is served from the same
// process.
//
// Usage:
//
//	# Start from environment variables alone
//	OPENAI_API_KEY=sk-... hermes run
//
//	# Start with a configuration file
//	hermes run --config /etc/hermes/config.yaml
//
//	# Show version information
//	hermes version
//
//	# Check the configuration and print the effective settings
//	hermes validate --config /etc/hermes/config.yaml
//
// For complete documentation, see: https://github.com/lattice-hq/hermes
package main

func main() {
	Execute()
}
