package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled controls whether metrics are recorded. When false all
	// Record methods are no-ops.
	Enabled bool

	// Namespace and Subsystem prefix every metric name.
	// Defaults: "parley", "gateway".
	Namespace string
	Subsystem string

	// RequestDurationBuckets are histogram buckets for request latency
	// in seconds. Defaults are tuned for LLM request latencies.
	RequestDurationBuckets []float64
}

// Collector records pipeline metrics against its own Prometheus registry.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	tokensTotal      *prometheus.CounterVec
	filterBlocks     *prometheus.CounterVec
	rateLimitedTotal prometheus.Counter
	suspiciousTotal  prometheus.Counter
}

// NewCollector creates a collector with the given configuration. If
// registry is nil a fresh registry is created.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "parley"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of generation requests by terminal outcome",
			},
			[]string{"outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of generation requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"outcome"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Total number of tokens processed",
			},
			[]string{"type"},
		),

		filterBlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "content_filter_blocks_total",
				Help:      "Total number of content-policy blocks by severity",
			},
			[]string{"severity", "side"},
		),

		rateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limited_total",
				Help:      "Total number of requests denied by the rate limiter",
			},
		),

		suspiciousTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suspicious_inputs_total",
				Help:      "Total number of inputs flagged by prompt-injection heuristics",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.tokensTotal,
		c.filterBlocks,
		c.rateLimitedTotal,
		c.suspiciousTotal,
	)

	return c
}

// RecordRequest records a completed request with its terminal outcome and
// latency.
func (c *Collector) RecordRequest(outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestsTotal.WithLabelValues(outcome).Inc()
	c.requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordTokens records input and output token counts for a successful
// request.
func (c *Collector) RecordTokens(input, output int) {
	if !c.config.Enabled {
		return
	}
	c.tokensTotal.WithLabelValues("input").Add(float64(input))
	c.tokensTotal.WithLabelValues("output").Add(float64(output))
}

// RecordFilterBlock records a content-policy block. side is "request" or
// "response".
func (c *Collector) RecordFilterBlock(severity, side string) {
	if !c.config.Enabled {
		return
	}
	c.filterBlocks.WithLabelValues(severity, side).Inc()
}

// RecordRateLimited records a rate-limiter denial.
func (c *Collector) RecordRateLimited() {
	if !c.config.Enabled {
		return
	}
	c.rateLimitedTotal.Inc()
}

// RecordSuspicious records an input flagged by the prompt-injection
// heuristics.
func (c *Collector) RecordSuspicious() {
	if !c.config.Enabled {
		return
	}
	c.suspiciousTotal.Inc()
}

// Registry returns the collector's Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
