package model

import (
	"time"
)

// Role represents the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage represents one turn in a session. Messages are immutable
// once appended; derived views (simplified text, email drafts) are
// transient presentation state and never stored here.
type ChatMessage struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Text      string      `json:"text"`
	Answer    *AnswerData `json:"answer,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// AnswerData is the structured payload of a model message. It is
// produced exactly once per model message and never modified.
type AnswerData struct {
	Answer        string       `json:"answer"`
	RelatedTopics []string     `json:"related_topics"`
	SourceLinks   []SourceLink `json:"source_links"`
	// Language is a BCP-47 tag for the detected language of the answer,
	// used to pick a matching synthesis voice.
	Language string `json:"language"`
}

// SourceLink points at a statute or article backing an answer.
type SourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DefaultLanguage is the tag stamped on fallback answers when the
// gateway failed before detecting anything.
const DefaultLanguage = "nb-NO"

// FallbackAnswer is the canned reply appended when the gateway call
// fails for any reason.
const FallbackAnswer = "I'm sorry, but I encountered an error. Please try again."

// FallbackAnswerData builds the model payload used for failed requests.
func FallbackAnswerData() *AnswerData {
	return &AnswerData{
		Answer:        FallbackAnswer,
		RelatedTopics: []string{},
		SourceLinks:   []SourceLink{},
		Language:      DefaultLanguage,
	}
}
