package store

import (
	"time"

	"github.com/arbeidsrett-ai/assistant-platform/pkg/metrics"
)

// NoticeTTL is how long a transient notice stays visible before it is
// auto-cleared.
const NoticeTTL = 5 * time.Second

// Notice is a transient, user-visible error banner. A newer notice
// replaces an older one; otherwise it expires after NoticeTTL.
type Notice struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SetNotice publishes a transient notice and schedules its expiry. The
// generation counter keeps an expiry timer from clearing a notice that
// has already been replaced.
func (s *Store) SetNotice(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noticeGen++
	gen := s.noticeGen
	s.notice = &Notice{
		Kind:      kind,
		Message:   message,
		CreatedAt: s.now(),
	}
	metrics.SpeechErrorsTotal.WithLabelValues(kind).Inc()

	s.after(NoticeTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.noticeGen == gen {
			s.notice = nil
		}
	})
}

// ClearNotice removes any visible notice.
func (s *Store) ClearNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noticeGen++
	s.notice = nil
}

// Notice returns the current notice, or nil.
func (s *Store) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}
