package speech_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbeidsrett-ai/assistant-platform/internal/llm"
	"github.com/arbeidsrett-ai/assistant-platform/internal/persist"
	"github.com/arbeidsrett-ai/assistant-platform/internal/speech"
	"github.com/arbeidsrett-ai/assistant-platform/internal/store"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
)

// Dictation writes the pending-input buffer and surfaces faults as
// transient notices; submitting hard-aborts the listening session.
func TestDictationFeedsConversationStore(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), logger.NewNop())
	st := store.New(context.Background(), llm.NewMockGateway(), adapter, logger.NewNop())

	engine := &fakeRecognizer{}
	input := speech.NewInputController(engine,
		st.SetPendingInput,
		func(kind speech.ErrorKind) {
			st.SetNotice(string(kind), "Speech recognition failed.")
		},
		logger.NewNop(),
	)
	st.SetDictation(input)

	st.SetPendingInput("typed leftovers")
	require.NoError(t, input.Start())
	// Activation cleared the buffer before any result.
	require.Equal(t, "", st.PendingInput())

	engine.cb.OnResult([]string{"kan jeg si opp "})
	engine.cb.OnResult([]string{"kan jeg si opp ", "i prøvetiden"})
	require.Equal(t, "kan jeg si opp i prøvetiden", st.PendingInput())

	require.NoError(t, st.Submit(context.Background()))
	require.Equal(t, 1, engine.aborted)
	require.Equal(t, speech.InputIdle, input.State())
	st.Wait()

	sessions := st.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, "kan jeg si opp i prøvetiden", sessions[0].Messages[0].Text)
}

func TestRecognitionFaultRaisesNotice(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), logger.NewNop())
	st := store.New(context.Background(), llm.NewMockGateway(), adapter, logger.NewNop())

	engine := &fakeRecognizer{}
	input := speech.NewInputController(engine,
		st.SetPendingInput,
		func(kind speech.ErrorKind) {
			st.SetNotice(string(kind), "Speech recognition failed.")
		},
		logger.NewNop(),
	)

	require.NoError(t, input.Start())
	engine.cb.OnError("network")

	notice := st.Notice()
	require.NotNil(t, notice)
	require.Equal(t, "network", notice.Kind)

	// The routine silence timeout never raises a notice.
	st.ClearNotice()
	require.NoError(t, input.Start())
	engine.cb.OnError("no-speech")
	require.Nil(t, st.Notice())
}
