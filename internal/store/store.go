// Package store implements the conversation state machine: the session
// list, the active-session pointer, the pending-input buffer and the
// lifecycle of the single in-flight AI request.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/internal/llm"
	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
	"github.com/arbeidsrett-ai/assistant-platform/internal/persist"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/metrics"
)

// Aborter hard-stops an active dictation session. Submit aborts (not
// merely stops) dictation so no further interim results land in the
// pending-input buffer after the question is taken.
type Aborter interface {
	Abort()
}

// Store owns conversation state. All methods are safe for concurrent
// use; mutation happens only under the store mutex.
type Store struct {
	mu              sync.Mutex
	sessions        []*model.ChatSession // most-recent-first
	activeSessionID string
	pendingInput    string
	inFlight        bool

	notice    *Notice
	noticeGen uint64

	gateway   llm.Gateway
	adapter   *persist.Adapter
	dictation Aborter
	logger    *logger.Logger

	now   func() time.Time
	after func(d time.Duration, f func())
	newID func() string

	wg sync.WaitGroup
}

// New creates a store, loading any persisted session list.
func New(ctx context.Context, gateway llm.Gateway, adapter *persist.Adapter, log *logger.Logger) *Store {
	s := &Store{
		gateway: gateway,
		adapter: adapter,
		logger:  log,
		now:     time.Now,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	s.sessions = adapter.LoadSessions(ctx)
	return s
}

// SetDictation registers the dictation controller aborted on submit.
func (s *Store) SetDictation(a Aborter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictation = a
}

// StartNewSession clears the active-session pointer and the pending
// input. The session list is untouched; the next submission creates and
// activates a fresh session.
func (s *Store) StartNewSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSessionID = ""
	s.pendingInput = ""
}

// SelectSession activates the session with the given id. Unknown ids
// are ignored: selection comes from a list the caller already holds.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			s.activeSessionID = id
			return
		}
	}
}

// SetPendingInput overwrites the pending-input buffer. Typed input and
// dictation both write here; they are mutually exclusive in time.
func (s *Store) SetPendingInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInput = text
}

// ErrBlankInput and ErrInFlight report why a submission was refused.
var (
	ErrBlankInput = fmt.Errorf("pending input is blank")
	ErrInFlight   = fmt.Errorf("a request is already in flight")
)

// Submit takes the pending input as a question, appends the user message
// (creating a session if none is active) and resolves the assistant
// reply asynchronously. The reply lands in the session that originated
// it, addressed by the id captured here, even if the active session
// changes while the request is in flight.
func (s *Store) Submit(ctx context.Context) error {
	s.mu.Lock()

	question := strings.TrimSpace(s.pendingInput)
	if question == "" {
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("rejected_blank").Inc()
		return ErrBlankInput
	}
	if s.inFlight {
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("rejected_in_flight").Inc()
		return ErrInFlight
	}

	if s.dictation != nil {
		s.dictation.Abort()
	}

	s.inFlight = true
	s.pendingInput = ""

	userMsg := model.ChatMessage{
		ID:        s.newID(),
		Role:      model.RoleUser,
		Text:      question,
		CreatedAt: s.now(),
	}

	var sessionID string
	if s.activeSessionID == "" {
		sess := &model.ChatSession{
			ID:        s.newID(),
			Title:     model.NewTitle(question),
			Messages:  []model.ChatMessage{userMsg},
			CreatedAt: s.now(),
		}
		s.sessions = append([]*model.ChatSession{sess}, s.sessions...)
		s.activeSessionID = sess.ID
		sessionID = sess.ID
		metrics.SessionsCreated.Inc()
		s.logger.Info("session created",
			zap.String("session_id", sess.ID),
			zap.String("title", sess.Title),
		)
	} else {
		sessionID = s.activeSessionID
		sess := s.findLocked(sessionID)
		sess.Messages = append(sess.Messages, userMsg)
	}

	s.saveLocked(ctx)
	s.mu.Unlock()

	// The reply must outlive the submitting request.
	callCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resolve(callCtx, sessionID, question)
	}()

	return nil
}

// resolve runs the gateway call and appends the reply. The in-flight
// flag is cleared on every exit path, including a panicking gateway.
func (s *Store) resolve(ctx context.Context, sessionID, question string) {
	answer, err := s.askSafely(ctx, question)
	if err != nil {
		s.logger.WithSession(sessionID).Warn("gateway call failed", zap.Error(err))
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		answer = model.FallbackAnswerData()
	} else {
		metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	}

	modelMsg := model.ChatMessage{
		ID:        s.newID(),
		Role:      model.RoleModel,
		Text:      answer.Answer,
		Answer:    answer,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.inFlight = false }()

	sess := s.findLocked(sessionID)
	if sess == nil {
		// Sessions are never deleted, so this indicates a bug upstream.
		s.logger.Error("originating session vanished", zap.String("session_id", sessionID))
		return
	}
	sess.Messages = append(sess.Messages, modelMsg)
	s.saveLocked(ctx)
}

// askSafely converts a panicking gateway into an ordinary error so the
// flight flag still clears.
func (s *Store) askSafely(ctx context.Context, question string) (answer *model.AnswerData, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer = nil
			err = fmt.Errorf("gateway panicked: %v", r)
		}
	}()
	return s.gateway.Ask(ctx, question)
}

// Wait blocks until any in-flight reply has settled. Used on shutdown
// and in tests.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) findLocked(id string) *model.ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (s *Store) saveLocked(ctx context.Context) {
	s.adapter.SaveSessions(ctx, s.sessions)
}
