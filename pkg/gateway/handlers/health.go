package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler serves GET /health for liveness probes.
type HealthHandler struct {
	version   string
	generator string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler reporting the given build
// version and active generator name.
func NewHealthHandler(version, generator string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		generator: generator,
		startTime: time.Now(),
	}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "healthy",
		"version":        h.version,
		"generator":      h.generator,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
