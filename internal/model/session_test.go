package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
)

func TestNewTitle(t *testing.T) {
	cases := []struct {
		name     string
		question string
		want     string
	}{
		{"short", "Hva er ferie?", "Hva er ferie?"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"thirty one", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"trimmed before truncation", "  " + strings.Repeat("b", 30) + "  ", strings.Repeat("b", 30)},
		{"multibyte runes", strings.Repeat("æ", 31), strings.Repeat("æ", 30) + "..."},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, model.NewTitle(tc.question))
		})
	}
}

func TestFallbackAnswerData(t *testing.T) {
	got := model.FallbackAnswerData()
	require.Equal(t, model.FallbackAnswer, got.Answer)
	require.NotNil(t, got.RelatedTopics)
	require.Empty(t, got.RelatedTopics)
	require.NotNil(t, got.SourceLinks)
	require.Empty(t, got.SourceLinks)
	require.Equal(t, model.DefaultLanguage, got.Language)
}

func TestSessionMessageLookup(t *testing.T) {
	sess := &model.ChatSession{
		ID: "s1",
		Messages: []model.ChatMessage{
			{ID: "m1", Role: model.RoleUser, Text: "spørsmål"},
			{ID: "m2", Role: model.RoleModel, Text: "svar"},
		},
	}

	require.Equal(t, "svar", sess.Message("m2").Text)
	require.Nil(t, sess.Message("missing"))
}
