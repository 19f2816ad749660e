package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"parley-hq/parley/pkg/config"
	"parley-hq/parley/pkg/gateway"
	"parley-hq/parley/pkg/generate"
	"parley-hq/parley/pkg/governance"
	"parley-hq/parley/pkg/governance/conversation"
	"parley-hq/parley/pkg/governance/ratelimit"
	"parley-hq/parley/pkg/server"
	"parley-hq/parley/pkg/telemetry/metrics"
	"parley-hq/parley/pkg/usage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Parley gateway server",
	Long: `Start the Parley gateway server with the specified configuration.

The server listens on the configured address and runs every generation
request through validation, content filtering, rate limiting, and
conversation tracking before invoking the model provider.

When no provider endpoint or API key is configured the built-in mock
generator is used, which makes local development hermetic.

Examples:
  # Start with default config
  parley run

  # Start with custom config
  parley run --config /etc/parley/config.yaml

  # Override listen address
  parley run --listen 0.0.0.0:8080

  # Validate config without starting server
  parley run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	setupLogging(cfg)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Parley v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Governance layer
	validator := governance.NewValidator(cfg.Governance.MaxMessageLength)
	filter := governance.NewContentFilter(cfg.Governance.ContentFilter.Patterns)
	limiter := ratelimit.NewLimiter(cfg.Governance.RateLimit.MaxRequests, cfg.Governance.RateLimit.Window)
	history := conversation.NewStore(cfg.Governance.MaxHistory)

	// Optional pattern file with hot reload
	if path := cfg.Governance.ContentFilter.PatternsFile; path != "" {
		watcher, err := governance.NewPatternWatcher(path, filter, 0)
		if err != nil {
			return fmt.Errorf("failed to load pattern file: %w", err)
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("pattern watcher exited", "error", err)
			}
		}()
		fmt.Printf("✓ Content-filter patterns loaded from %s\n", path)
	}

	// Model provider: HTTP when configured, mock otherwise
	var generator generate.Generator
	if cfg.Provider.Endpoint != "" && cfg.Provider.APIKey != "" {
		generator = generate.NewHTTPGenerator(generate.HTTPConfig{
			Name:       "anthropic",
			BaseURL:    cfg.Provider.Endpoint,
			APIKey:     cfg.Provider.APIKey,
			ModelID:    cfg.Provider.ModelID,
			Timeout:    cfg.Provider.Timeout,
			MaxRetries: cfg.Provider.MaxRetries,
		})
	} else {
		generator = generate.NewMockGenerator()
		slog.Warn("no provider configured, using mock generator")
	}
	fmt.Printf("✓ Generator initialized (%s)\n", generator.Name())

	// Usage store, recorder, and retention
	if dir := filepath.Dir(cfg.Usage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create usage data directory: %w", err)
		}
	}
	store, err := usage.NewSQLiteStore(usage.SQLiteConfig{Path: cfg.Usage.Path})
	if err != nil {
		return fmt.Errorf("failed to open usage store: %w", err)
	}
	defer store.Close()

	recorder := usage.NewRecorder(store, cfg.Usage.BufferSize)
	defer recorder.Close()

	retention := usage.NewRetentionScheduler(store, usage.RetentionConfig{
		Days:     cfg.Usage.RetentionDays,
		Schedule: cfg.Usage.RetentionSchedule,
	})
	if err := retention.Start(ctx); err != nil {
		slog.Warn("failed to start usage retention scheduler", "error", err)
	} else {
		defer retention.Stop()
	}
	fmt.Println("✓ Usage store initialized")

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{
			Enabled:   true,
			Namespace: cfg.Telemetry.Metrics.Namespace,
			Subsystem: cfg.Telemetry.Metrics.Subsystem,
		}, nil)
	}

	orchestrator := gateway.NewOrchestrator(gateway.OrchestratorConfig{
		Validator: validator,
		Filter:    filter,
		Limiter:   limiter,
		History:   history,
		Generator: generator,
		Recorder:  recorder,
		Metrics:   collector,
		Refusal:   cfg.Governance.ContentFilter.Refusal,
		Timeout:   cfg.Provider.Timeout,
	})

	srv := server.NewServer(cfg.Server, server.Components{
		Orchestrator:  orchestrator,
		UsageStore:    store,
		Metrics:       collector,
		Version:       Version,
		GeneratorName: generator.Name(),
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Generate endpoint: http://%s/v1/generate\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal or a listener error.
	return srv.Start(ctx)
}

// setupLogging installs the process-wide default logger per the telemetry
// configuration.
func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Telemetry.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
