package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"parley-hq/parley/pkg/gateway"
	"parley-hq/parley/pkg/usage"
)

// Day-range bounds for usage queries.
const (
	DefaultUsageDays = 7
	MaxUsageDays     = 90
)

// UsageHandler serves GET /v1/usage/{user_id}, the per-user usage report.
type UsageHandler struct {
	store  usage.Store
	logger *slog.Logger
}

// NewUsageHandler creates a UsageHandler backed by store.
func NewUsageHandler(store usage.Store) *UsageHandler {
	return &UsageHandler{
		store:  store,
		logger: slog.Default().With("component", "handlers.usage"),
	}
}

// ServeHTTP implements http.Handler. The user ID is the final path
// segment; the optional "days" query parameter selects the reporting
// period (default 7, capped at 90).
func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		gateway.WriteJSONError(w, http.StatusMethodNotAllowed,
			string(gateway.OutcomeInvalidRequest), "method not allowed")
		return
	}

	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/usage"), "/")
	if userID == "" || strings.Contains(userID, "/") {
		gateway.WriteJSONError(w, http.StatusBadRequest,
			string(gateway.OutcomeInvalidRequest), "user_id path segment is required")
		return
	}

	days := DefaultUsageDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			gateway.WriteJSONError(w, http.StatusBadRequest,
				string(gateway.OutcomeInvalidRequest), "days must be a positive integer")
			return
		}
		days = parsed
	}
	if days > MaxUsageDays {
		days = MaxUsageDays
	}

	stats, err := h.store.Stats(r.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to query usage stats",
			"user_id", userID,
			"error", err,
		)
		gateway.WriteJSONError(w, http.StatusInternalServerError,
			string(gateway.OutcomeInternalError), "failed to retrieve usage statistics")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to write usage response", "error", err)
	}
}
