// Package metrics provides Prometheus instrumentation for the generation
// pipeline.
//
// # Metrics
//
//   - parley_gateway_requests_total: requests by terminal outcome
//   - parley_gateway_request_duration_seconds: request latency histogram
//   - parley_gateway_tokens_total: input/output token counts
//   - parley_gateway_content_filter_blocks_total: policy blocks by severity and side
//   - parley_gateway_rate_limited_total: rate-limiter denials
//   - parley_gateway_suspicious_inputs_total: prompt-injection flags
//
// A Collector owns its own registry so tests can assert on counters
// without interfering with each other. The HTTP handler for scraping is
// exposed via Collector.Handler and mounted at /metrics.
package metrics
