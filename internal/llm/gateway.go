package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/internal/model"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/metrics"
)

// Gateway is the question-answering boundary the conversation store
// depends on. Any error from Ask is treated uniformly as a failed
// request; Simplify and DraftEmail produce ephemeral strings that are
// never stored in the session model.
type Gateway interface {
	Ask(ctx context.Context, question string) (*model.AnswerData, error)
	Simplify(ctx context.Context, answer, question string) (string, error)
	DraftEmail(ctx context.Context, answer, question string) (string, error)
	Name() string
}

const askSystemPrompt = `You are an assistant specialized in Norwegian labor law (arbeidsrett).
Answer questions about working conditions, employment contracts, dismissal,
working hours, holiday pay and related topics, grounded in Norwegian statutes
such as arbeidsmiljøloven and ferieloven.

Detect the language of the question and answer in that language.

Respond with a single JSON object and nothing else, using this shape:
{
  "answer": "markdown answer text",
  "relatedTopics": ["short follow-up topic", ...],
  "sourceLinks": [{"title": "Arbeidsmiljøloven § 14-15", "url": "https://lovdata.no/..."}],
  "language": "BCP-47 tag of the answer, e.g. nb-NO or en-US"
}`

const simplifySystemPrompt = `You simplify legal answers. Rewrite the given answer in plain,
everyday language, keeping the meaning and the language of the original answer.
Respond with the simplified text only.`

const emailSystemPrompt = `You draft short, polite emails. Based on the given legal answer and
the question that prompted it, draft an email the user could send to their
employer or union representative about the matter, in the same language as
the question. Respond with the email text only, including a subject line.`

// ClientGateway implements Gateway on top of a provider Client.
type ClientGateway struct {
	client Client
	logger *logger.Logger
}

// NewClientGateway creates a gateway backed by the given provider.
func NewClientGateway(client Client, log *logger.Logger) *ClientGateway {
	return &ClientGateway{client: client, logger: log}
}

// Name returns the underlying provider name.
func (g *ClientGateway) Name() string {
	return g.client.Name()
}

// Ask sends the question and parses the structured answer payload.
func (g *ClientGateway) Ask(ctx context.Context, question string) (*model.AnswerData, error) {
	start := time.Now()

	resp, err := g.client.Complete(ctx, &CompletionRequest{
		System:   askSystemPrompt,
		Messages: []ChatMessage{{Role: "user", Content: question}},
	})
	if err != nil {
		metrics.RecordGatewayCall(g.client.Name(), "ask", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	answer, err := parseAnswer(resp.Content)
	if err != nil {
		metrics.RecordGatewayCall(g.client.Name(), "ask", "error", time.Since(start).Seconds())
		g.logger.Warn("unparseable gateway payload",
			zap.String("provider", g.client.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordGatewayCall(g.client.Name(), "ask", "success", time.Since(start).Seconds())
	return answer, nil
}

// Simplify returns a plain-language rendering of an answer.
func (g *ClientGateway) Simplify(ctx context.Context, answer, question string) (string, error) {
	return g.plainCall(ctx, "simplify", simplifySystemPrompt,
		fmt.Sprintf("Question:\n%s\n\nAnswer to simplify:\n%s", question, answer))
}

// DraftEmail returns an email template derived from an answer.
func (g *ClientGateway) DraftEmail(ctx context.Context, answer, question string) (string, error) {
	return g.plainCall(ctx, "email", emailSystemPrompt,
		fmt.Sprintf("Question:\n%s\n\nAnswer:\n%s", question, answer))
}

func (g *ClientGateway) plainCall(ctx context.Context, op, system, user string) (string, error) {
	start := time.Now()

	resp, err := g.client.Complete(ctx, &CompletionRequest{
		System:   system,
		Messages: []ChatMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		metrics.RecordGatewayCall(g.client.Name(), op, "error", time.Since(start).Seconds())
		return "", fmt.Errorf("completion failed: %w", err)
	}

	metrics.RecordGatewayCall(g.client.Name(), op, "success", time.Since(start).Seconds())
	return strings.TrimSpace(resp.Content), nil
}

// parseAnswer extracts the structured answer JSON from model output,
// tolerating surrounding prose and markdown code fences.
func parseAnswer(content string) (*model.AnswerData, error) {
	trimmed := strings.TrimSpace(content)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var payload struct {
		Answer        string             `json:"answer"`
		RelatedTopics []string           `json:"relatedTopics"`
		SourceLinks   []model.SourceLink `json:"sourceLinks"`
		Language      string             `json:"language"`
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("malformed answer payload: %w", err)
	}
	if payload.Answer == "" {
		return nil, fmt.Errorf("answer payload missing answer text")
	}

	if payload.RelatedTopics == nil {
		payload.RelatedTopics = []string{}
	}
	if payload.SourceLinks == nil {
		payload.SourceLinks = []model.SourceLink{}
	}
	if payload.Language == "" {
		payload.Language = model.DefaultLanguage
	}

	return &model.AnswerData{
		Answer:        payload.Answer,
		RelatedTopics: payload.RelatedTopics,
		SourceLinks:   payload.SourceLinks,
		Language:      payload.Language,
	}, nil
}
