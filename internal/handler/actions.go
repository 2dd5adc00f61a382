package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/internal/llm"
	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
	"github.com/arbeidsrett-ai/assistant-platform/internal/store"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// ActionHandler serves the per-message follow-up actions. Results are
// ephemeral presentation state: they are returned in the response body
// and never written to the session history.
type ActionHandler struct {
	store   *store.Store
	gateway llm.Gateway
	logger  *logger.Logger
}

// NewActionHandler creates a new action handler.
func NewActionHandler(st *store.Store, gw llm.Gateway, log *logger.Logger) *ActionHandler {
	return &ActionHandler{store: st, gateway: gw, logger: log}
}

// Simplify handles POST /api/v1/chat/messages/{id}/simplify
func (h *ActionHandler) Simplify(w http.ResponseWriter, r *http.Request) {
	msg, question, ok := h.target(w, r)
	if !ok {
		return
	}

	text, err := h.gateway.Simplify(r.Context(), msg.Answer.Answer, question)
	if err != nil {
		h.logger.Warn("simplify failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "could not simplify the answer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Email handles POST /api/v1/chat/messages/{id}/email
func (h *ActionHandler) Email(w http.ResponseWriter, r *http.Request) {
	msg, question, ok := h.target(w, r)
	if !ok {
		return
	}

	text, err := h.gateway.DraftEmail(r.Context(), msg.Answer.Answer, question)
	if err != nil {
		h.logger.Warn("email draft failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "could not draft an email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// target resolves the addressed model message and the user question
// that preceded it.
func (h *ActionHandler) target(w http.ResponseWriter, r *http.Request) (*model.ChatMessage, string, bool) {
	id := chi.URLParam(r, "id")

	msg, sess := h.store.FindMessage(id)
	if msg == nil {
		writeError(w, http.StatusNotFound, "message not found")
		return nil, "", false
	}
	if msg.Role != model.RoleModel || msg.Answer == nil {
		writeError(w, http.StatusBadRequest, "actions apply to assistant messages only")
		return nil, "", false
	}

	var question string
	for i := range sess.Messages {
		if sess.Messages[i].ID == id {
			if i > 0 && sess.Messages[i-1].Role == model.RoleUser {
				question = sess.Messages[i-1].Text
			}
			break
		}
	}

	return msg, question, true
}
