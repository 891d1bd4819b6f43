package backlog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/llm"
)

func TestWriter_Ingest_RejectsShortPrompt(t *testing.T) {
	w := NewWriter(NewMockRepository(), NewMockMatcher(), llm.NewMockGateway(), DefaultMatchThresholdPercent, zap.NewNop())
	err := w.Ingest(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestWriter_Ingest_RejectsOverlongPrompt(t *testing.T) {
	w := NewWriter(NewMockRepository(), NewMockMatcher(), llm.NewMockGateway(), DefaultMatchThresholdPercent, zap.NewNop())
	err := w.Ingest(context.Background(), strings.Repeat("a", maxPromptTextLength+1), "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestWriter_Ingest_RejectsOverlongComment(t *testing.T) {
	w := NewWriter(NewMockRepository(), NewMockMatcher(), llm.NewMockGateway(), DefaultMatchThresholdPercent, zap.NewNop())
	err := w.Ingest(context.Background(), "a valid prompt text", strings.Repeat("b", maxCommentTextLength+1))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestWriter_Ingest_AppendsToMatchedCard(t *testing.T) {
	matchedCard := uuid.New()
	repo := NewMockRepository()
	matcher := NewMockMatcher()
	matcher.FindBestMatchFunc = func(ctx context.Context, promptText, commentText string, threshold int) (uuid.UUID, int, error) {
		return matchedCard, 75, nil
	}

	w := NewWriter(repo, matcher, llm.NewMockGateway(), DefaultMatchThresholdPercent, zap.NewNop())
	err := w.Ingest(context.Background(), "Necesito integración con Stripe", "urgente")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.AppendPromptCalls)
	assert.Equal(t, 0, repo.CreateCardCalls)
}

func TestWriter_Ingest_CreatesNewCardWhenNoMatch(t *testing.T) {
	repo := NewMockRepository()
	matcher := NewMockMatcher()
	matcher.FindBestMatchFunc = func(ctx context.Context, promptText, commentText string, threshold int) (uuid.UUID, int, error) {
		return NoMatch, 0, nil
	}

	var generatedFrom string
	gw := llm.NewMockGateway()
	gw.GenerateCardFieldsFunc = func(ctx context.Context, promptText string) (string, string, error) {
		generatedFrom = promptText
		return "New integration request", promptText, nil
	}

	w := NewWriter(repo, matcher, gw, DefaultMatchThresholdPercent, zap.NewNop())
	err := w.Ingest(context.Background(), "Need Stripe integration", "")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.CreateCardCalls)
	assert.Equal(t, 0, repo.AppendPromptCalls)
	assert.Equal(t, "Need Stripe integration", generatedFrom)
}

