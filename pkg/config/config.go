package config

import "time"

// Config is the root configuration structure for Parley.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Provider contains configuration for the model provider. When
	// Endpoint or APIKey is empty the mock generator is used.
	Provider ProviderConfig `yaml:"provider"`

	// Governance contains configuration for the request-governance
	// layer: validation, content filtering, rate limiting, and history.
	Governance GovernanceConfig `yaml:"governance"`

	// Usage contains configuration for the usage store and recorder.
	Usage UsageConfig `yaml:"usage"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProviderConfig contains configuration for the model provider.
type ProviderConfig struct {
	// Endpoint is the messages endpoint URL. Empty selects mock mode.
	Endpoint string `yaml:"endpoint"`

	// APIKey authenticates against the provider. Typically supplied via
	// the PARLEY_PROVIDER_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// ModelID is the model to invoke.
	// Default: "claude-sonnet-4-20250514"
	ModelID string `yaml:"model_id"`

	// Timeout bounds each generation request, retries included.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry budget for transient provider failures.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// GovernanceConfig contains configuration for the governance layer.
type GovernanceConfig struct {
	// MaxMessageLength is the maximum inbound message length in
	// characters. Default: 2000
	MaxMessageLength int `yaml:"max_message_length"`

	// MaxHistory is the per-conversation history bound. Default: 10
	MaxHistory int `yaml:"max_history"`

	// RateLimit configures per-caller admission control.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// ContentFilter configures content-policy filtering.
	ContentFilter ContentFilterConfig `yaml:"content_filter"`
}

// RateLimitConfig configures the fixed-window rate limiter.
type RateLimitConfig struct {
	// MaxRequests is the number of requests admitted per window per
	// caller. Default: 10
	MaxRequests int `yaml:"max_requests"`

	// Window is the fixed window size. Default: 1m
	Window time.Duration `yaml:"window"`
}

// ContentFilterConfig configures content-policy filtering.
type ContentFilterConfig struct {
	// Patterns is the list of policy-violation keyword patterns.
	// Empty uses the built-in default set.
	Patterns []string `yaml:"patterns"`

	// PatternsFile is an optional plain-text pattern file (one pattern
	// per line) that is hot-reloaded on change. When set it takes
	// precedence over Patterns.
	PatternsFile string `yaml:"patterns_file"`

	// Refusal is the fixed text substituted when generated output is
	// blocked by the filter.
	Refusal string `yaml:"refusal"`
}

// UsageConfig contains configuration for the usage store.
type UsageConfig struct {
	// Path is the SQLite database file path.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// BufferSize is the recorder's channel buffer. Default: 1024
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays is how long usage records are kept. A negative
	// value disables pruning; zero means unset. Default: 90
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for the pruning job.
	// Default: "0 3 * * *"
	RetentionSchedule string `yaml:"retention_schedule"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls metric recording and the /metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace and Subsystem prefix metric names.
	// Defaults: "parley", "gateway"
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}
