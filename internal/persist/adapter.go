package persist

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/metrics"
)

// Adapter reads and writes the session list as JSON on top of a KV
// backend. Reads fall back to the empty default on absence or corrupt
// data; writes are best-effort and never propagate failures, because
// in-memory state stays authoritative for the running process.
type Adapter struct {
	kv     KV
	logger *logger.Logger
}

// NewAdapter creates an adapter over the given backend.
func NewAdapter(kv KV, log *logger.Logger) *Adapter {
	return &Adapter{kv: kv, logger: log}
}

// LoadSessions returns the persisted session list, or an empty list when
// nothing usable is stored.
func (a *Adapter) LoadSessions(ctx context.Context) []*model.ChatSession {
	raw, ok, err := a.kv.Get(ctx, SessionsKey)
	if err != nil {
		a.logger.Warn("failed to read chat history, starting empty", zap.Error(err))
		return []*model.ChatSession{}
	}
	if !ok {
		return []*model.ChatSession{}
	}

	var sessions []*model.ChatSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		a.logger.Warn("corrupt chat history, starting empty", zap.Error(err))
		return []*model.ChatSession{}
	}
	if sessions == nil {
		sessions = []*model.ChatSession{}
	}
	return sessions
}

// SaveSessions writes the session list. Failures are logged and counted,
// never returned.
func (a *Adapter) SaveSessions(ctx context.Context, sessions []*model.ChatSession) {
	raw, err := json.Marshal(sessions)
	if err != nil {
		a.logger.Error("failed to marshal chat history", zap.Error(err))
		metrics.PersistFailures.Inc()
		return
	}
	if err := a.kv.Set(ctx, SessionsKey, raw); err != nil {
		a.logger.Error("failed to persist chat history", zap.Error(err))
		metrics.PersistFailures.Inc()
	}
}

// Ping verifies the backend is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	_, _, err := a.kv.Get(ctx, SessionsKey)
	return err
}

// Close closes the underlying backend.
func (a *Adapter) Close() error {
	return a.kv.Close()
}
