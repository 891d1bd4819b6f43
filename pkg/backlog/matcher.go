package backlog

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/llm"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

// DefaultMatchThresholdPercent is the minimum similarity percentage a
// sampled card prompt must reach to count as a match.
const DefaultMatchThresholdPercent = 50

// NoMatch is the sentinel returned by Matcher when no active card clears the
// threshold.
var NoMatch = uuid.Nil

// Sampler picks one prompt from a card's children. The production Sampler
// draws uniformly at random; tests may substitute a deterministic one via
// the seed hook noted in the design (random sampling is not seeded in
// production).
type Sampler interface {
	Sample(prompts []models.CardPrompt) (models.CardPrompt, bool)
}

// randomSampler draws uniformly at random using rnd.
type randomSampler struct {
	rnd *rand.Rand
}

// NewRandomSampler builds a Sampler seeded by seed. Pass a seed derived from
// a real entropy source in production; tests can pass a fixed seed for
// determinism.
func NewRandomSampler(seed int64) Sampler {
	return &randomSampler{rnd: rand.New(rand.NewSource(seed))}
}

func (s *randomSampler) Sample(prompts []models.CardPrompt) (models.CardPrompt, bool) {
	if len(prompts) == 0 {
		return models.CardPrompt{}, false
	}
	return prompts[s.rnd.Intn(len(prompts))], true
}

// Matcher finds the best matching backlog card for an incoming prompt by
// per-card random sampling and embedding similarity.
type Matcher interface {
	// FindBestMatch returns the card_id with the highest similarity at or
	// above threshold, or NoMatch if no active card clears it.
	FindBestMatch(ctx context.Context, promptText, commentText string, threshold int) (uuid.UUID, int, error)
}

type matcher struct {
	repo    Repository
	gateway llm.Gateway
	sampler Sampler
	logger  *zap.Logger
}

// NewMatcher builds a Matcher backed by repo and gateway, sampling with
// sampler.
func NewMatcher(repo Repository, gateway llm.Gateway, sampler Sampler, logger *zap.Logger) Matcher {
	return &matcher{repo: repo, gateway: gateway, sampler: sampler, logger: logger.Named("backlog.matcher")}
}

var _ Matcher = (*matcher)(nil)

func (m *matcher) FindBestMatch(ctx context.Context, promptText, commentText string, threshold int) (uuid.UUID, int, error) {
	cards, err := m.repo.ActiveCards(ctx)
	if err != nil {
		return NoMatch, 0, fmt.Errorf("list active cards: %w", err)
	}
	if len(cards) == 0 {
		return NoMatch, 0, nil
	}

	incoming := strings.TrimSpace(promptText)
	if strings.TrimSpace(commentText) != "" {
		incoming = incoming + "\n" + strings.TrimSpace(commentText)
	}
	incomingEmbedding, err := m.gateway.GetEmbedding(ctx, incoming)
	if err != nil {
		return NoMatch, 0, fmt.Errorf("embed incoming prompt: %w", err)
	}

	bestCard := NoMatch
	bestPercent := 0

	for _, card := range cards {
		sampled, ok := m.sampler.Sample(card.Prompts)
		if !ok {
			continue
		}

		cardText := sampled.PromptText
		if sampled.CommentText != "" {
			cardText = cardText + "\n" + sampled.CommentText
		}
		cardEnglish, err := m.gateway.TranslateToEnglish(ctx, cardText)
		if err != nil {
			return NoMatch, 0, fmt.Errorf("translate card prompt: %w", err)
		}
		cardEmbedding, err := m.gateway.GetEmbedding(ctx, cardEnglish)
		if err != nil {
			return NoMatch, 0, fmt.Errorf("embed card prompt: %w", err)
		}

		percent := similarityPercent(incomingEmbedding, cardEmbedding)
		if percent > bestPercent && percent >= threshold {
			bestPercent = percent
			bestCard = card.ID
		}
	}

	return bestCard, bestPercent, nil
}

// similarityPercent computes cosine similarity between a and b, then maps it
// to [0,100] with the same sigmoid transform the hybrid scorer uses.
func similarityPercent(a, b []float32) int {
	cosine := cosineSimilarity(a, b)
	transformed := 1 / (1 + math.Exp(-10*(cosine-0.5)))
	percent := int(math.Round(100 * transformed))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
