package llm

import (
	"context"
	"fmt"

	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
)

// MockGateway is a canned gateway for tests and keyless development runs.
type MockGateway struct{}

// NewMockGateway creates a mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Name() string {
	return "mock"
}

func (m *MockGateway) Ask(ctx context.Context, question string) (*model.AnswerData, error) {
	return &model.AnswerData{
		Answer: fmt.Sprintf("Dette er et testsvar på spørsmålet: %s", question),
		RelatedTopics: []string{
			"Oppsigelsestid",
			"Feriepenger",
		},
		SourceLinks: []model.SourceLink{
			{Title: "Arbeidsmiljøloven", URL: "https://lovdata.no/dokument/NL/lov/2005-06-17-62"},
		},
		Language: "nb-NO",
	}, nil
}

func (m *MockGateway) Simplify(ctx context.Context, answer, question string) (string, error) {
	return "Forenklet: " + answer, nil
}

func (m *MockGateway) DraftEmail(ctx context.Context, answer, question string) (string, error) {
	return "Emne: Spørsmål om arbeidsforhold\n\nHei,\n\n" + answer, nil
}
