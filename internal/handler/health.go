package handler

import (
	"net/http"

	"github.com/arbeidsrett-ai/assistant-platform/internal/persist"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	history *persist.Adapter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(history *persist.Adapter) *HealthHandler {
	return &HealthHandler{history: history}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "history store unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
