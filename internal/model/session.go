// Package model defines data structures for the assistant platform.
package model

import (
	"strings"
	"time"
)

// TitleMaxLen is the number of characters of the first question kept as
// the session title.
const TitleMaxLen = 30

// ChatSession represents one conversation thread between a user and the
// assistant. Sessions are created lazily on the first submission and are
// never deleted by the core.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewTitle derives a session title from the first question: the first
// TitleMaxLen characters, with an ellipsis appended when the trimmed
// question is longer than that.
func NewTitle(question string) string {
	question = strings.TrimSpace(question)
	runes := []rune(question)
	if len(runes) <= TitleMaxLen {
		return question
	}
	return string(runes[:TitleMaxLen]) + "..."
}

// Message returns the message with the given id, or nil.
func (s *ChatSession) Message(id string) *ChatMessage {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}
