package backlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/llm"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestSimilarityPercent_IdenticalVectorsScoreHigh(t *testing.T) {
	v := []float32{0.1, 0.2, 0.3}
	assert.Equal(t, 99, similarityPercent(v, v))
}

func TestRandomSampler_ReturnsFalseForEmpty(t *testing.T) {
	s := NewRandomSampler(1)
	_, ok := s.Sample(nil)
	assert.False(t, ok)
}

func TestRandomSampler_PicksFromGivenPrompts(t *testing.T) {
	s := NewRandomSampler(42)
	prompts := []models.CardPrompt{{PromptText: "a"}, {PromptText: "b"}}
	picked, ok := s.Sample(prompts)
	require.True(t, ok)
	assert.Contains(t, []string{"a", "b"}, picked.PromptText)
}

// fixedSampler always returns the first prompt, for deterministic tests.
type fixedSampler struct{}

func (fixedSampler) Sample(prompts []models.CardPrompt) (models.CardPrompt, bool) {
	if len(prompts) == 0 {
		return models.CardPrompt{}, false
	}
	return prompts[0], true
}

func TestMatcher_FindBestMatch_NoActiveCardsReturnsNoMatch(t *testing.T) {
	repo := NewMockRepository()
	gw := llm.NewMockGateway()
	m := NewMatcher(repo, gw, fixedSampler{}, zap.NewNop())

	cardID, percent, err := m.FindBestMatch(context.Background(), "need a CRM", "", DefaultMatchThresholdPercent)
	require.NoError(t, err)
	assert.Equal(t, NoMatch, cardID)
	assert.Equal(t, 0, percent)
}

func TestMatcher_FindBestMatch_ReturnsBestAboveThreshold(t *testing.T) {
	wantCard := uuid.New()
	repo := NewMockRepository()
	repo.ActiveCardsFunc = func(ctx context.Context) ([]models.ActiveCard, error) {
		return []models.ActiveCard{
			{ID: wantCard, Prompts: []models.CardPrompt{{PromptText: "Need Stripe in my CRM"}}},
		}, nil
	}

	gw := llm.NewMockGateway()
	gw.GetEmbeddingFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	m := NewMatcher(repo, gw, fixedSampler{}, zap.NewNop())

	cardID, percent, err := m.FindBestMatch(context.Background(), "Need Stripe integration", "", DefaultMatchThresholdPercent)
	require.NoError(t, err)
	assert.Equal(t, wantCard, cardID)
	assert.Equal(t, 99, percent)
}

func TestMatcher_FindBestMatch_BelowThresholdReturnsNoMatch(t *testing.T) {
	repo := NewMockRepository()
	repo.ActiveCardsFunc = func(ctx context.Context) ([]models.ActiveCard, error) {
		return []models.ActiveCard{
			{ID: uuid.New(), Prompts: []models.CardPrompt{{PromptText: "Unrelated request"}}},
		}, nil
	}

	gw := llm.NewMockGateway()
	callCount := 0
	gw.GetEmbeddingFunc = func(ctx context.Context, text string) ([]float32, error) {
		callCount++
		if callCount == 1 {
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}

	m := NewMatcher(repo, gw, fixedSampler{}, zap.NewNop())

	cardID, _, err := m.FindBestMatch(context.Background(), "Need Stripe integration", "", DefaultMatchThresholdPercent)
	require.NoError(t, err)
	assert.Equal(t, NoMatch, cardID)
}
