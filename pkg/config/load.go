package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Boolean fields that default to true (metrics
// enabled) are pre-set before unmarshalling so the file can still turn
// them off.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Config{}
	cfg.Telemetry.Metrics.Enabled = true

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides of the form PARLEY_SECTION_FIELD
// (e.g. PARLEY_SERVER_LISTEN_ADDRESS). Environment variables always take
// precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies PARLEY_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Server
	if val := os.Getenv("PARLEY_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("PARLEY_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("PARLEY_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Provider
	if val := os.Getenv("PARLEY_PROVIDER_ENDPOINT"); val != "" {
		cfg.Provider.Endpoint = val
	}
	if val := os.Getenv("PARLEY_PROVIDER_API_KEY"); val != "" {
		cfg.Provider.APIKey = val
	}
	if val := os.Getenv("PARLEY_PROVIDER_MODEL_ID"); val != "" {
		cfg.Provider.ModelID = val
	}
	if val := os.Getenv("PARLEY_PROVIDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Provider.Timeout = d
		}
	}

	// Governance
	if val := os.Getenv("PARLEY_GOVERNANCE_MAX_MESSAGE_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Governance.MaxMessageLength = i
		}
	}
	if val := os.Getenv("PARLEY_GOVERNANCE_MAX_HISTORY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Governance.MaxHistory = i
		}
	}
	if val := os.Getenv("PARLEY_GOVERNANCE_RATE_LIMIT_MAX_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Governance.RateLimit.MaxRequests = i
		}
	}
	if val := os.Getenv("PARLEY_GOVERNANCE_RATE_LIMIT_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Governance.RateLimit.Window = d
		}
	}
	if val := os.Getenv("PARLEY_GOVERNANCE_CONTENT_FILTER_PATTERNS_FILE"); val != "" {
		cfg.Governance.ContentFilter.PatternsFile = val
	}

	// Usage
	if val := os.Getenv("PARLEY_USAGE_PATH"); val != "" {
		cfg.Usage.Path = val
	}
	if val := os.Getenv("PARLEY_USAGE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Usage.RetentionDays = i
		}
	}

	// Telemetry
	if val := os.Getenv("PARLEY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PARLEY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PARLEY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
