package store

import (
	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
)

// Snapshot is a consistent, caller-owned copy of store state.
type Snapshot struct {
	Sessions        []*model.ChatSession `json:"sessions"`
	ActiveSessionID string               `json:"active_session_id,omitempty"`
	PendingInput    string               `json:"pending_input"`
	InFlight        bool                 `json:"in_flight"`
	Notice          *Notice              `json:"notice,omitempty"`
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]*model.ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		sessions[i] = cloneSession(sess)
	}

	var notice *Notice
	if s.notice != nil {
		n := *s.notice
		notice = &n
	}

	return &Snapshot{
		Sessions:        sessions,
		ActiveSessionID: s.activeSessionID,
		PendingInput:    s.pendingInput,
		InFlight:        s.inFlight,
		Notice:          notice,
	}
}

// Sessions returns a copy of the session list, most recent first.
func (s *Store) Sessions() []*model.ChatSession {
	return s.Snapshot().Sessions
}

// ActiveSession returns a copy of the active session, or nil.
func (s *Store) ActiveSession() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSessionID == "" {
		return nil
	}
	if sess := s.findLocked(s.activeSessionID); sess != nil {
		return cloneSession(sess)
	}
	return nil
}

// Session returns a copy of the session with the given id, or nil.
func (s *Store) Session(id string) *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.findLocked(id); sess != nil {
		return cloneSession(sess)
	}
	return nil
}

// FindMessage locates a message by id across all sessions. Used by the
// per-message follow-up actions.
func (s *Store) FindMessage(id string) (*model.ChatMessage, *model.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		for i := range sess.Messages {
			if sess.Messages[i].ID == id {
				msg := sess.Messages[i]
				return &msg, cloneSession(sess)
			}
		}
	}
	return nil, nil
}

// PendingInput returns the pending-input buffer.
func (s *Store) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingInput
}

// InFlight reports whether a request is awaiting its reply.
func (s *Store) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// cloneSession copies a session and its message slice. AnswerData is
// immutable once attached, so message structs are copied shallowly.
func cloneSession(sess *model.ChatSession) *model.ChatSession {
	out := *sess
	out.Messages = make([]model.ChatMessage, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return &out
}
