// Package server ties the gateway together: it builds the HTTP route
// table and middleware chain and manages server lifecycle.
//
// # Routes
//
//   - POST /v1/generate - text generation through the governed pipeline
//   - GET /v1/usage/{user_id} - per-user usage statistics
//   - GET /health - liveness probe
//   - GET /metrics - Prometheus scrape endpoint (when metrics are enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery: converts panics into JSON 500 responses
//  2. Logging: one structured log line per completed request
//  3. RequestID: assigns and propagates X-Request-ID
//
// # Graceful Shutdown
//
// The server shuts down on SIGTERM or SIGINT, or when the context passed
// to Start is cancelled:
//  1. Stops accepting new connections
//  2. Waits for active requests to complete (up to the shutdown timeout)
//  3. Forces connection closure if the timeout elapses
//
// All server operations are safe for concurrent use.
package server
