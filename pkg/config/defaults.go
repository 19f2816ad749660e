package config

import "time"

// ApplyDefaults fills unset fields with default values. It is called by
// LoadConfig before validation; callers constructing a Config directly
// should call it themselves.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.MaxHeaderBytes <= 0 {
		cfg.Server.MaxHeaderBytes = 1 << 20
	}

	// Provider
	if cfg.Provider.ModelID == "" {
		cfg.Provider.ModelID = "claude-sonnet-4-20250514"
	}
	if cfg.Provider.Timeout <= 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}
	if cfg.Provider.MaxRetries < 0 {
		cfg.Provider.MaxRetries = 0
	} else if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = 2
	}

	// Governance
	if cfg.Governance.MaxMessageLength <= 0 {
		cfg.Governance.MaxMessageLength = 2000
	}
	if cfg.Governance.MaxHistory <= 0 {
		cfg.Governance.MaxHistory = 10
	}
	if cfg.Governance.RateLimit.MaxRequests <= 0 {
		cfg.Governance.RateLimit.MaxRequests = 10
	}
	if cfg.Governance.RateLimit.Window <= 0 {
		cfg.Governance.RateLimit.Window = time.Minute
	}
	if cfg.Governance.ContentFilter.Refusal == "" {
		cfg.Governance.ContentFilter.Refusal = "I cannot provide that type of content. Please try a different request."
	}

	// Usage
	if cfg.Usage.Path == "" {
		cfg.Usage.Path = "data/usage.db"
	}
	if cfg.Usage.BufferSize <= 0 {
		cfg.Usage.BufferSize = 1024
	}
	if cfg.Usage.RetentionDays < 0 {
		cfg.Usage.RetentionDays = 0
	} else if cfg.Usage.RetentionDays == 0 {
		cfg.Usage.RetentionDays = 90
	}
	if cfg.Usage.RetentionSchedule == "" {
		cfg.Usage.RetentionSchedule = "0 3 * * *"
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "parley"
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = "gateway"
	}
}

// DefaultConfig returns a Config populated entirely with defaults.
// Metrics are enabled by default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
