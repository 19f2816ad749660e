package handlers

import (
	"log/slog"
	"net/http"

	"parley-hq/parley/pkg/gateway"
)

// GenerateHandler serves POST /v1/generate, the text-generation endpoint.
type GenerateHandler struct {
	orchestrator *gateway.Orchestrator
	logger       *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler backed by orchestrator.
func NewGenerateHandler(orchestrator *gateway.Orchestrator) *GenerateHandler {
	return &GenerateHandler{
		orchestrator: orchestrator,
		logger:       slog.Default().With("component", "handlers.generate"),
	}
}

// ServeHTTP implements http.Handler.
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		gateway.WriteJSONError(w, http.StatusMethodNotAllowed,
			string(gateway.OutcomeInvalidRequest), "method not allowed")
		return
	}

	req, err := gateway.ParseGenerationRequest(r)
	if err != nil {
		gateway.WriteJSONError(w, http.StatusBadRequest,
			string(gateway.OutcomeInvalidRequest), err.Error())
		return
	}

	result := h.orchestrator.Process(r.Context(), req, gateway.ProvenanceFromRequest(r))
	if err := result.WriteTo(w); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
