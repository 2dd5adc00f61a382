package speech_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbeidsrett-ai/assistant-platform/internal/speech"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// utterance is one Speak call captured by the fake engine.
type utterance struct {
	text     string
	language string
	done     func(err error)
}

// fakeSynthesizer records utterances; Cancel completes the newest one
// with ErrCanceled, mirroring how platform engines surface preemption.
type fakeSynthesizer struct {
	utterances []*utterance
	canceled   int
}

func (f *fakeSynthesizer) Speak(text, language string, done func(err error)) {
	f.utterances = append(f.utterances, &utterance{text: text, language: language, done: done})
}

func (f *fakeSynthesizer) Cancel() {
	f.canceled++
	if n := len(f.utterances); n > 0 {
		f.utterances[n-1].done(speech.ErrCanceled)
	}
}

func TestTogglePlaysAndStops(t *testing.T) {
	engine := &fakeSynthesizer{}
	c := speech.NewOutputController(engine, logger.NewNop())

	c.Toggle("msg-1", "Du har krav på ferie.", "nb-NO")
	require.Equal(t, "msg-1", c.PlayingMessageID())
	require.Len(t, engine.utterances, 1)
	require.Equal(t, "nb-NO", engine.utterances[0].language)

	// Toggling the playing message stops it without starting another.
	c.Toggle("msg-1", "Du har krav på ferie.", "nb-NO")
	require.Equal(t, "", c.PlayingMessageID())
	require.Len(t, engine.utterances, 1)
	require.Equal(t, 1, engine.canceled)
}

func TestSingleUtteranceInvariant(t *testing.T) {
	engine := &fakeSynthesizer{}
	c := speech.NewOutputController(engine, logger.NewNop())

	c.Toggle("msg-x", "first answer", "nb-NO")
	first := engine.utterances[0]

	c.Toggle("msg-y", "second answer", "en-US")
	require.Equal(t, "msg-y", c.PlayingMessageID())
	require.Len(t, engine.utterances, 2)
	require.Equal(t, 1, engine.canceled)

	// X's late completion is stale and must not clobber Y's state.
	first.done(nil)
	require.Equal(t, "msg-y", c.PlayingMessageID())
}

func TestCompletionClearsPlayback(t *testing.T) {
	engine := &fakeSynthesizer{}
	c := speech.NewOutputController(engine, logger.NewNop())

	c.Toggle("msg-1", "svar", "nb-NO")
	engine.utterances[0].done(nil)
	require.Equal(t, "", c.PlayingMessageID())

	// A second playback of the same message works after completion.
	c.Toggle("msg-1", "svar", "nb-NO")
	require.Equal(t, "msg-1", c.PlayingMessageID())
}

func TestEngineErrorResetsPlayback(t *testing.T) {
	engine := &fakeSynthesizer{}
	c := speech.NewOutputController(engine, logger.NewNop())

	c.Toggle("msg-1", "svar", "nb-NO")
	engine.utterances[0].done(errors.New("synthesis-unavailable"))
	require.Equal(t, "", c.PlayingMessageID())
}

func TestCloseCancelsActiveUtterance(t *testing.T) {
	engine := &fakeSynthesizer{}
	c := speech.NewOutputController(engine, logger.NewNop())

	c.Toggle("msg-1", "svar", "nb-NO")
	c.Close()
	require.Equal(t, 1, engine.canceled)
	require.Equal(t, "", c.PlayingMessageID())
}

// countingSynthesizer tracks how many utterances are audible at once.
// Cancel completes the pending utterance with ErrCanceled, so the count
// drops only when the engine is actually told to stop.
type countingSynthesizer struct {
	mu      sync.Mutex
	done    func(err error)
	active  int
	maxSeen int
}

func (s *countingSynthesizer) Speak(text, language string, done func(err error)) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.done = done
	s.mu.Unlock()
}

func (s *countingSynthesizer) Cancel() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	if done != nil {
		s.active--
	}
	s.mu.Unlock()
	if done != nil {
		done(speech.ErrCanceled)
	}
}

func TestConcurrentTogglesKeepOneUtteranceAudible(t *testing.T) {
	engine := &countingSynthesizer{}
	c := speech.NewOutputController(engine, logger.NewNop())

	// Two goroutines toggling different messages must never leave the
	// engine speaking both at once: every preempting toggle has to
	// cancel the previous utterance before its own starts.
	var wg sync.WaitGroup
	for _, id := range []string{"msg-x", "msg-y"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Toggle(id, "svar", "nb-NO")
			}
		}(id)
	}
	wg.Wait()
	c.Stop()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	require.LessOrEqual(t, engine.maxSeen, 1)
	require.Equal(t, 0, engine.active)
}

func TestToggleWithoutEngineIsNoOp(t *testing.T) {
	c := speech.NewOutputController(nil, logger.NewNop())
	c.Toggle("msg-1", "svar", "nb-NO")
	require.Equal(t, "", c.PlayingMessageID())
	c.Close()
}
