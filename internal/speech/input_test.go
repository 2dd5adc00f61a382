package speech_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbeidsrett-ai/assistant-platform/internal/speech"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// fakeRecognizer records controller commands and lets the test fire
// engine events.
type fakeRecognizer struct {
	started  int
	stopped  int
	aborted  int
	cfg      speech.RecognizerConfig
	cb       speech.RecognizerCallbacks
	startErr error
}

func (f *fakeRecognizer) Start(cfg speech.RecognizerConfig, cb speech.RecognizerCallbacks) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	f.cfg = cfg
	f.cb = cb
	return nil
}

func (f *fakeRecognizer) Stop()  { f.stopped++ }
func (f *fakeRecognizer) Abort() { f.aborted++ }

type recorded struct {
	transcripts []string
	errors      []speech.ErrorKind
}

func newInput(t *testing.T, engine speech.Recognizer) (*speech.InputController, *recorded) {
	t.Helper()
	rec := &recorded{}
	c := speech.NewInputController(engine,
		func(text string) { rec.transcripts = append(rec.transcripts, text) },
		func(kind speech.ErrorKind) { rec.errors = append(rec.errors, kind) },
		logger.NewNop(),
	)
	return c, rec
}

func TestStartWithoutEngine(t *testing.T) {
	c, _ := newInput(t, nil)
	require.ErrorIs(t, c.Start(), speech.ErrNotAvailable)
	require.Equal(t, speech.InputIdle, c.State())
}

func TestStartConfiguresSingleShotInterim(t *testing.T) {
	engine := &fakeRecognizer{}
	c, rec := newInput(t, engine)

	require.NoError(t, c.Start())
	require.Equal(t, speech.InputListening, c.State())
	require.False(t, engine.cfg.Continuous)
	require.True(t, engine.cfg.InterimResults)

	// Activation clears the externally visible buffer first.
	require.Equal(t, []string{""}, rec.transcripts)
}

func TestTranscriptIsCumulativeReplacement(t *testing.T) {
	engine := &fakeRecognizer{}
	c, rec := newInput(t, engine)
	require.NoError(t, c.Start())

	engine.cb.OnResult([]string{"har jeg "})
	engine.cb.OnResult([]string{"har jeg ", "krav på "})
	engine.cb.OnResult([]string{"har jeg ", "krav på ", "overtidsbetaling"})

	require.Equal(t, "har jeg krav på overtidsbetaling", c.Transcript())
	// Each event replaced the whole buffer, never appended to it.
	require.Equal(t, []string{
		"",
		"har jeg ",
		"har jeg krav på ",
		"har jeg krav på overtidsbetaling",
	}, rec.transcripts)
}

func TestNoSpeechIsSwallowed(t *testing.T) {
	engine := &fakeRecognizer{}
	c, rec := newInput(t, engine)
	require.NoError(t, c.Start())

	engine.cb.OnError("no-speech")

	require.Equal(t, speech.InputIdle, c.State())
	require.Empty(t, rec.errors)
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		code string
		kind speech.ErrorKind
	}{
		{"network", speech.ErrorNetwork},
		{"not-allowed", speech.ErrorPermissionDenied},
		{"service-not-allowed", speech.ErrorPermissionDenied},
		{"audio-capture", speech.ErrorUnknown},
		{"aborted", speech.ErrorUnknown},
	}

	for _, tc := range cases {
		engine := &fakeRecognizer{}
		c, rec := newInput(t, engine)
		require.NoError(t, c.Start())

		engine.cb.OnError(tc.code)

		require.Equal(t, speech.InputIdle, c.State(), tc.code)
		require.Equal(t, []speech.ErrorKind{tc.kind}, rec.errors, tc.code)
	}
}

func TestAbortDiscardsTranscript(t *testing.T) {
	engine := &fakeRecognizer{}
	c, rec := newInput(t, engine)
	require.NoError(t, c.Start())

	engine.cb.OnResult([]string{"halvveis inn i et spørsmål"})
	c.Abort()

	require.Equal(t, 1, engine.aborted)
	require.Equal(t, speech.InputIdle, c.State())
	require.Equal(t, "", c.Transcript())

	// Results and errors racing the abort are dropped, not surfaced.
	engine.cb.OnResult([]string{"etterslep"})
	engine.cb.OnError("aborted")
	require.Equal(t, "", c.Transcript())
	require.NotContains(t, rec.transcripts, "etterslep")
	require.Empty(t, rec.errors)
}

func TestStartFailurePropagatesAndResets(t *testing.T) {
	engine := &fakeRecognizer{startErr: errors.New("engine busy")}
	c, _ := newInput(t, engine)

	require.Error(t, c.Start())
	require.Equal(t, speech.InputIdle, c.State())
}

// sequencedRecognizer records engine commands in order and is safe for
// concurrent callers.
type sequencedRecognizer struct {
	mu  sync.Mutex
	ops []string
}

func (f *sequencedRecognizer) Start(cfg speech.RecognizerConfig, cb speech.RecognizerCallbacks) error {
	f.mu.Lock()
	f.ops = append(f.ops, "start")
	f.mu.Unlock()
	return nil
}

func (f *sequencedRecognizer) Stop() {
	f.mu.Lock()
	f.ops = append(f.ops, "stop")
	f.mu.Unlock()
}

func (f *sequencedRecognizer) Abort() {
	f.mu.Lock()
	f.ops = append(f.ops, "abort")
	f.mu.Unlock()
}

func (f *sequencedRecognizer) lastOp() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ops) == 0 {
		return ""
	}
	return f.ops[len(f.ops)-1]
}

func (f *sequencedRecognizer) reset() {
	f.mu.Lock()
	f.ops = f.ops[:0]
	f.mu.Unlock()
}

func TestAbortRacingStartLeavesEngineConsistent(t *testing.T) {
	engine := &sequencedRecognizer{}
	c, _ := newInput(t, engine)

	// An abort landing mid-start must not leave the engine capturing
	// while the controller reports idle: the engine's last command has
	// to match the state the controller settles in.
	for i := 0; i < 200; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Start()
		}()
		go func() {
			defer wg.Done()
			c.Abort()
		}()
		wg.Wait()

		switch c.State() {
		case speech.InputListening:
			require.Equal(t, "start", engine.lastOp())
		default:
			require.Equal(t, "abort", engine.lastOp())
		}

		c.Abort()
		engine.reset()
	}
}

func TestStopRequestsGracefulEnd(t *testing.T) {
	engine := &fakeRecognizer{}
	c, _ := newInput(t, engine)
	require.NoError(t, c.Start())

	c.Stop()
	require.Equal(t, 1, engine.stopped)

	engine.cb.OnEnd()
	require.Equal(t, speech.InputIdle, c.State())
}

func TestCloseAbortsUnconditionally(t *testing.T) {
	engine := &fakeRecognizer{}
	c, _ := newInput(t, engine)

	c.Close()
	require.Equal(t, 1, engine.aborted)
}
