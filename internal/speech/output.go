package speech

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/metrics"
)

// Synthesizer is the platform speech-synthesis engine contract. Speak
// plays text in the given language and invokes done exactly once, with
// nil on completion or an error otherwise. Cancel stops any active
// utterance, which surfaces ErrInterrupted or ErrCanceled through done.
type Synthesizer interface {
	Speak(text, language string, done func(err error))
	Cancel()
}

// Self-inflicted termination errors reported by engines when an
// utterance is preempted. They are not failures.
var (
	ErrInterrupted = errors.New("utterance interrupted")
	ErrCanceled    = errors.New("utterance canceled")
)

// OutputController guarantees at most one utterance is audible
// system-wide. Each started utterance carries an identity token; a
// callback from a superseded utterance is filtered by token comparison
// before it can touch playback state.
type OutputController struct {
	mu           sync.Mutex
	engine       Synthesizer
	playingMsgID string
	token        string
	logger       *logger.Logger

	// dispatch serializes each toggle's cancel-then-speak sequence
	// against other toggles, so state decisions and engine calls stay
	// in the same order. Engine callbacks take only mu, never dispatch.
	dispatch sync.Mutex
}

// NewOutputController creates a controller around a synthesis engine,
// which may be nil on platforms without speech support.
func NewOutputController(engine Synthesizer, log *logger.Logger) *OutputController {
	return &OutputController{engine: engine, logger: log}
}

// PlayingMessageID returns the id of the message being read aloud, or
// the empty string.
func (c *OutputController) PlayingMessageID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playingMsgID
}

// Toggle stops any current playback first; if the toggle targeted the
// message already playing, that is the whole effect. Otherwise it starts
// reading text aloud in the given language on behalf of msgID.
func (c *OutputController) Toggle(msgID, text, language string) {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	if c.engine == nil {
		c.mu.Unlock()
		return
	}

	wasPlaying := c.playingMsgID
	cancel := wasPlaying != ""
	c.playingMsgID = ""
	c.token = ""

	var token string
	start := wasPlaying != msgID
	if start {
		token = uuid.New().String()
		c.token = token
		c.playingMsgID = msgID
	}
	c.mu.Unlock()

	if cancel {
		c.engine.Cancel()
	}
	if !start {
		return
	}

	metrics.UtterancesTotal.Inc()
	c.engine.Speak(text, language, func(err error) {
		c.finish(token, err)
	})
}

// Stop cancels any active utterance.
func (c *OutputController) Stop() {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	engine := c.engine
	c.playingMsgID = ""
	c.token = ""
	c.mu.Unlock()

	if engine != nil {
		engine.Cancel()
	}
}

// Close cancels playback unconditionally.
func (c *OutputController) Close() {
	c.Stop()
}

func (c *OutputController) finish(token string, err error) {
	c.mu.Lock()
	if c.token != token {
		// Stale callback from a superseded utterance.
		c.mu.Unlock()
		return
	}
	c.playingMsgID = ""
	c.token = ""
	c.mu.Unlock()

	if err != nil && !errors.Is(err, ErrInterrupted) && !errors.Is(err, ErrCanceled) {
		c.logger.Warn("speech playback error", zap.Error(err))
	}
}
