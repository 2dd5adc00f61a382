// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/internal/store"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// ChatHandler exposes the conversation store over HTTP.
type ChatHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(st *store.Store, log *logger.Logger) *ChatHandler {
	return &ChatHandler{store: st, logger: log}
}

// State handles GET /api/v1/chat
func (h *ChatHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// NewSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	h.store.StartNewSession()
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// SelectSession handles POST /api/v1/chat/sessions/{id}/select
func (h *ChatHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	h.store.SelectSession(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

type setInputRequest struct {
	Text string `json:"text"`
}

// SetInput handles PUT /api/v1/chat/input
func (h *ChatHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	var req setInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.store.SetPendingInput(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/v1/chat/submit. The reply resolves
// asynchronously; clients poll GET /chat until in_flight clears.
func (h *ChatHandler) Submit(w http.ResponseWriter, r *http.Request) {
	err := h.store.Submit(r.Context())
	switch {
	case errors.Is(err, store.ErrBlankInput):
		writeError(w, http.StatusBadRequest, "nothing to submit")
	case errors.Is(err, store.ErrInFlight):
		writeError(w, http.StatusConflict, "a request is already in flight")
	case err != nil:
		h.logger.Error("submit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "submit failed")
	default:
		writeJSON(w, http.StatusAccepted, h.store.Snapshot())
	}
}
