package config

import (
	"fmt"
	"net"
)

// Validate checks a fully-defaulted configuration for invalid values.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("invalid server.listen_address %q: %w", cfg.Server.ListenAddress, err)
	}

	if cfg.Governance.MaxMessageLength <= 0 {
		return fmt.Errorf("governance.max_message_length must be positive, got %d", cfg.Governance.MaxMessageLength)
	}
	if cfg.Governance.MaxHistory <= 0 {
		return fmt.Errorf("governance.max_history must be positive, got %d", cfg.Governance.MaxHistory)
	}
	if cfg.Governance.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("governance.rate_limit.max_requests must be positive, got %d", cfg.Governance.RateLimit.MaxRequests)
	}
	if cfg.Governance.RateLimit.Window <= 0 {
		return fmt.Errorf("governance.rate_limit.window must be positive, got %s", cfg.Governance.RateLimit.Window)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid telemetry.logging.level %q", cfg.Telemetry.Logging.Level)
	}

	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid telemetry.logging.format %q", cfg.Telemetry.Logging.Format)
	}

	// Provider endpoint and API key must be supplied together; either
	// both set (real provider) or both empty (mock mode).
	if (cfg.Provider.Endpoint == "") != (cfg.Provider.APIKey == "") {
		return fmt.Errorf("provider.endpoint and provider.api_key must be set together")
	}

	return nil
}
