// Parley is a governed gateway in front of hosted text-generation models.
//
// It accepts generation requests over HTTP and runs each one through a
// governance pipeline before any model is invoked:
//   - Input validation and prompt-injection flagging
//   - Content-policy filtering of prompts and generated output
//   - Per-caller fixed-window rate limiting
//   - Bounded per-conversation history
//   - Usage accounting with per-user reporting
//
// Usage:
//
//	# Start the gateway with default configuration
//	parley run
//
//	# Start with a custom configuration file
//	parley run --config /path/to/config.yaml
//
//	# Validate configuration without starting
//	parley run --dry-run
//
//	# Show version information
//	parley version
package main

func main() {
	Execute()
}
