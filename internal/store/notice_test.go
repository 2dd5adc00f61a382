package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arbeidsrett-ai/assistant-platform/internal/llm"
	"github.com/arbeidsrett-ai/assistant-platform/internal/persist"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// newNoticeStore swaps the expiry scheduler for a hand-fired one so the
// timer behavior is testable without real waits.
func newNoticeStore(t *testing.T) (*Store, *[]func()) {
	t.Helper()

	adapter := persist.NewAdapter(persist.NewMemory(), logger.NewNop())
	s := New(context.Background(), llm.NewMockGateway(), adapter, logger.NewNop())

	timers := &[]func(){}
	s.after = func(d time.Duration, f func()) {
		require.Equal(t, NoticeTTL, d)
		*timers = append(*timers, f)
	}
	return s, timers
}

func TestNoticeExpiresAfterTTL(t *testing.T) {
	s, timers := newNoticeStore(t)

	s.SetNotice("network", "Nettverksfeil under talegjenkjenning.")
	require.NotNil(t, s.Notice())
	require.Len(t, *timers, 1)

	(*timers)[0]()
	require.Nil(t, s.Notice())
}

func TestStaleExpiryTimerKeepsNewerNotice(t *testing.T) {
	s, timers := newNoticeStore(t)

	s.SetNotice("network", "Nettverksfeil under talegjenkjenning.")
	s.SetNotice("permission-denied", "Mikrofontilgang er blokkert.")
	require.Len(t, *timers, 2)

	// The first notice's timer fires after its notice was replaced.
	(*timers)[0]()
	n := s.Notice()
	require.NotNil(t, n)
	require.Equal(t, "permission-denied", n.Kind)

	(*timers)[1]()
	require.Nil(t, s.Notice())
}

func TestStaleExpiryTimerAfterManualClear(t *testing.T) {
	s, timers := newNoticeStore(t)

	s.SetNotice("network", "Nettverksfeil under talegjenkjenning.")
	s.ClearNotice()
	s.SetNotice("unknown", "Talegjenkjenning feilet.")

	(*timers)[0]()
	n := s.Notice()
	require.NotNil(t, n)
	require.Equal(t, "unknown", n.Kind)
}
