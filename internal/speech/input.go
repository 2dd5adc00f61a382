// Package speech coordinates the platform speech engines with
// conversation state. The controllers are the sole mutators of their
// engines: at most one recognition session and one playback utterance
// are active at any time, and every exit path releases the engine.
package speech

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// RecognizerConfig configures one listening session.
type RecognizerConfig struct {
	Continuous     bool
	InterimResults bool
}

// RecognizerCallbacks receive engine events. OnResult carries the top
// transcript of every result collected so far in the current session,
// in order. OnError carries the raw engine error code.
type RecognizerCallbacks struct {
	OnResult func(transcripts []string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognizer is the platform speech-recognition engine contract.
type Recognizer interface {
	Start(cfg RecognizerConfig, cb RecognizerCallbacks) error
	Stop()
	Abort()
}

// InputState is the dictation lifecycle state.
type InputState string

const (
	InputIdle      InputState = "idle"
	InputListening InputState = "listening"
)

// ErrorKind is the small error taxonomy surfaced to the caller.
type ErrorKind string

const (
	ErrorNetwork          ErrorKind = "network"
	ErrorPermissionDenied ErrorKind = "permission-denied"
	ErrorUnknown          ErrorKind = "unknown"
)

// ErrNotAvailable reports that no recognition engine exists on this
// platform.
var ErrNotAvailable = errors.New("speech recognition not available")

// InputController owns the single recognition engine. The transcript
// buffer always reflects the cumulative best transcript of the current
// session; each result event replaces it wholesale.
type InputController struct {
	mu         sync.Mutex
	engine     Recognizer
	state      InputState
	transcript string

	onTranscript func(text string)
	onError      func(kind ErrorKind)
	logger       *logger.Logger

	// dispatch keeps each state transition and its engine call as one
	// unit, so an abort cannot slip between another call's transition
	// and its engine start. onTranscript and onError are never invoked
	// under dispatch: a submission aborts dictation while holding the
	// conversation lock those callbacks acquire.
	dispatch sync.Mutex
}

// NewInputController creates a controller around an engine, which may
// be nil on platforms without speech support. onTranscript receives the
// cumulative transcript (dictation writes the pending-input buffer);
// onError receives surfaced faults.
func NewInputController(engine Recognizer, onTranscript func(string), onError func(ErrorKind), log *logger.Logger) *InputController {
	return &InputController{
		engine:       engine,
		state:        InputIdle,
		onTranscript: onTranscript,
		onError:      onError,
		logger:       log,
	}
}

// State returns the current lifecycle state.
func (c *InputController) State() InputState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns the cumulative transcript of the current session.
func (c *InputController) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Start begins a listening session with interim results. Activating
// dictation clears the transcript buffer (and with it the pending
// input) before any result arrives.
func (c *InputController) Start() error {
	c.dispatch.Lock()
	c.mu.Lock()
	if c.engine == nil {
		c.mu.Unlock()
		c.dispatch.Unlock()
		return ErrNotAvailable
	}
	if c.state == InputListening {
		c.mu.Unlock()
		c.dispatch.Unlock()
		return nil
	}
	c.state = InputListening
	c.transcript = ""
	c.mu.Unlock()

	err := c.engine.Start(RecognizerConfig{
		Continuous:     false,
		InterimResults: true,
	}, RecognizerCallbacks{
		OnResult: c.handleResult,
		OnError:  c.handleError,
		OnEnd:    c.handleEnd,
	})
	if err != nil {
		c.mu.Lock()
		c.state = InputIdle
		c.mu.Unlock()
		c.dispatch.Unlock()
		return err
	}
	c.dispatch.Unlock()

	if c.onTranscript != nil {
		c.onTranscript("")
	}
	return nil
}

// Stop requests a graceful end; the engine finalizes pending results
// and fires its end event.
func (c *InputController) Stop() {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	engine := c.engine
	listening := c.state == InputListening
	c.mu.Unlock()

	if engine != nil && listening {
		engine.Stop()
	}
}

// Abort hard-stops recognition, discarding any in-progress transcript.
// Used when a submission preempts an active dictation.
func (c *InputController) Abort() {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	engine := c.engine
	c.state = InputIdle
	c.transcript = ""
	c.mu.Unlock()

	if engine != nil {
		engine.Abort()
	}
}

// Close releases the microphone unconditionally.
func (c *InputController) Close() {
	c.Abort()
}

func (c *InputController) handleResult(transcripts []string) {
	var full string
	for _, t := range transcripts {
		full += t
	}

	c.mu.Lock()
	if c.state != InputListening {
		// Result raced an abort; its transcript is discarded.
		c.mu.Unlock()
		return
	}
	c.transcript = full
	c.mu.Unlock()

	if c.onTranscript != nil {
		c.onTranscript(full)
	}
}

// handleError maps engine codes to the surfaced taxonomy. The state
// returns to idle before any error is reported, so a fault can never
// leave the controller stuck in listening.
func (c *InputController) handleError(code string) {
	c.mu.Lock()
	wasListening := c.state == InputListening
	c.state = InputIdle
	c.mu.Unlock()

	if !wasListening {
		// The session was already aborted; late engine errors (such as
		// the engine's own "aborted" event) carry no new information.
		return
	}

	var kind ErrorKind
	switch code {
	case "no-speech":
		// Routine silence timeout, not a fault.
		return
	case "network":
		kind = ErrorNetwork
	case "not-allowed", "service-not-allowed":
		kind = ErrorPermissionDenied
	default:
		kind = ErrorUnknown
	}

	c.logger.Warn("speech recognition error",
		zap.String("code", code),
		zap.String("kind", string(kind)),
	)
	if c.onError != nil {
		c.onError(kind)
	}
}

func (c *InputController) handleEnd() {
	c.mu.Lock()
	c.state = InputIdle
	c.mu.Unlock()
}
