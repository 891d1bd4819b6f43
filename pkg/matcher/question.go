package matcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/llm"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

// QuestionSynthesizer emits the single most pressing clarifying question for
// a session that is not yet valid.
type QuestionSynthesizer interface {
	// Synthesize picks the highest-priority missing dimension (labels >
	// integrations > tags) and returns one English question. Callers must
	// not invoke this when missing reports nothing outstanding.
	Synthesize(ctx context.Context, missing models.Missing, turnCount int) (string, error)
}

type questionSynthesizer struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// NewQuestionSynthesizer builds a QuestionSynthesizer backed by the gateway.
func NewQuestionSynthesizer(gateway llm.Gateway, logger *zap.Logger) QuestionSynthesizer {
	return &questionSynthesizer{gateway: gateway, logger: logger.Named("matcher.question")}
}

var _ QuestionSynthesizer = (*questionSynthesizer)(nil)

func (q *questionSynthesizer) Synthesize(ctx context.Context, missing models.Missing, turnCount int) (string, error) {
	dimension, needed := mostPressing(missing)
	if dimension == "" {
		return "", fmt.Errorf("synthesize called with nothing missing")
	}

	examples := llm.ExamplePoolFor(dimension, turnCount)
	question, err := q.gateway.GenerateQuestion(ctx, dimension, needed, examples)
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}
	return question, nil
}

// mostPressing selects the dimension to ask about next, in priority order
// labels > integrations > tags. Returns ("", 0) if nothing is missing.
func mostPressing(missing models.Missing) (string, int) {
	if missing.LabelsNeeded > 0 {
		return "labels", missing.LabelsNeeded
	}
	if missing.IntegrationsNeeded > 0 {
		return "integrations", missing.IntegrationsNeeded
	}
	if missing.TagsNeeded > 0 {
		return "tags", missing.TagsNeeded
	}
	return "", 0
}
