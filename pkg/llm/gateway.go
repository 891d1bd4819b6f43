package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nexusmarket/matcher-core/pkg/jsonutil"
	"github.com/nexusmarket/matcher-core/pkg/models"
	"github.com/nexusmarket/matcher-core/pkg/retry"
)

// maxCardGenerationAttempts bounds the internal retry-with-feedback loop for
// GenerateCardFields; after the last failed attempt it returns an error.
const maxCardGenerationAttempts = 3

// DefaultGateway is the production implementation of Gateway. It wraps a
// ChatClient and an EmbeddingClient with retry, a circuit breaker, an
// outbound rate limiter, and an optional embedding cache, translating raw
// provider errors into the llm.Error taxonomy.
type DefaultGateway struct {
	chat       ChatClient
	embeddings EmbeddingClient
	embedModel string

	limiter        *rate.Limiter
	breaker        *CircuitBreaker
	retryConfig    *retry.Config
	embeddingCache EmbeddingCache

	logger *zap.Logger
}

// GatewayConfig configures a DefaultGateway.
type GatewayConfig struct {
	EmbeddingModel          string
	RequestsPerSecond       float64
	Burst                   int
	CircuitBreakerThreshold int
}

// NewDefaultGateway wires a chat client and an embedding client behind the
// Gateway interface. embeddingCache may be nil (NoopEmbeddingCache is used).
func NewDefaultGateway(chat ChatClient, embeddings EmbeddingClient, cfg GatewayConfig, embeddingCache EmbeddingCache, logger *zap.Logger) *DefaultGateway {
	if embeddingCache == nil {
		embeddingCache = NoopEmbeddingCache{}
	}
	threshold := cfg.CircuitBreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 10
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 5
	}

	return &DefaultGateway{
		chat:       chat,
		embeddings: embeddings,
		embedModel: cfg.EmbeddingModel,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			Threshold:  threshold,
			ResetAfter: 30 * time.Second,
		}),
		retryConfig:    retry.DefaultConfig(),
		embeddingCache: embeddingCache,
		logger:         logger.Named("llm.gateway"),
	}
}

// call runs fn under the circuit breaker and retry policy, throttled by the
// rate limiter. fn should perform exactly one outbound request.
func (g *DefaultGateway) call(ctx context.Context, fn func() error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	allowed, err := g.breaker.Allow()
	if !allowed {
		return NewError(ErrorTypeEndpoint, "circuit breaker open", false, err)
	}

	err = retry.DoIfRetryable(ctx, g.retryConfig, fn)
	if err != nil {
		g.breaker.RecordFailure()
		return err
	}
	g.breaker.RecordSuccess()
	return nil
}

// TranslateToEnglish implements Gateway.
func (g *DefaultGateway) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	var result string
	err := g.call(ctx, func() error {
		r, err := g.chat.ChatCompletion(ctx, translateSystemPrompt, text, 0.0)
		if err != nil {
			return err
		}
		result = strings.TrimSpace(r)
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// ExtractRequirements implements Gateway.
func (g *DefaultGateway) ExtractRequirements(ctx context.Context, turnText string, prior *models.Accumulated) (*models.RequirementDelta, error) {
	known := ""
	if prior != nil {
		var parts []string
		if len(prior.Labels) > 0 {
			parts = append(parts, "labels: "+strings.Join(prior.Labels, ", "))
		}
		if len(prior.Tags) > 0 {
			parts = append(parts, "tags: "+strings.Join(prior.Tags, ", "))
		}
		if len(prior.Integrations) > 0 {
			parts = append(parts, "integrations: "+strings.Join(prior.Integrations, ", "))
		}
		known = strings.Join(parts, "; ")
	}

	userPrompt := extractionUserPrompt(turnText, LabelCatalog, known)

	var raw string
	err := g.call(ctx, func() error {
		r, err := g.chat.ChatCompletion(ctx, extractionSystemPrompt, userPrompt, 0.1)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	delta, err := ParseJSONResponse[models.RequirementDelta](raw)
	if err != nil {
		return nil, NewError(ErrorTypeUnknown, "could not parse extraction response", false, err)
	}
	return &delta, nil
}

// GetEmbedding implements Gateway.
func (g *DefaultGateway) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := g.embeddingCache.Get(ctx, text); ok {
		return cached, nil
	}

	var vector []float32
	err := g.call(ctx, func() error {
		v, err := g.embeddings.CreateEmbedding(ctx, text, g.embedModel)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.embeddingCache.Set(ctx, text, vector)
	return vector, nil
}

// GenerateQuestion implements Gateway.
func (g *DefaultGateway) GenerateQuestion(ctx context.Context, dimension string, needed int, examples []string) (string, error) {
	userPrompt := questionUserPrompt(dimension, needed, examples)

	var raw string
	err := g.call(ctx, func() error {
		r, err := g.chat.ChatCompletion(ctx, questionSystemPrompt, userPrompt, 0.3)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})
	if err != nil {
		return "", err
	}

	parsed, err := ParseJSONResponse[questionFields](raw)
	if err != nil {
		return "", NewError(ErrorTypeUnknown, "could not parse question response", false, err)
	}
	if strings.TrimSpace(parsed.Question) == "" {
		return "", NewError(ErrorTypeUnknown, "question response had no question field", false, nil)
	}
	return parsed.Question, nil
}

type questionFields struct {
	Question string `json:"question"`
}

// GenerateCardFields implements Gateway. It retries the same prompt up to
// maxCardGenerationAttempts times, appending validation feedback to the
// prompt each time. If the model still has not produced valid fields after
// the retry budget, it signals external_service rather than returning a
// synthetic result.
func (g *DefaultGateway) GenerateCardFields(ctx context.Context, promptText string) (string, string, error) {
	userPrompt := cardGenerationUserPrompt(promptText)

	var lastReason string
	for attempt := 0; attempt < maxCardGenerationAttempts; attempt++ {
		var raw string
		err := g.call(ctx, func() error {
			r, err := g.chat.ChatCompletion(ctx, cardGenerationSystemPrompt, userPrompt, 0.2)
			if err != nil {
				return err
			}
			raw = r
			return nil
		})
		if err != nil {
			return "", "", err
		}

		fields, parseErr := ParseJSONResponse[cardFields](raw)
		if parseErr != nil {
			lastReason = parseErr.Error()
			userPrompt = fmt.Sprintf("%s\n\nInvalid JSON: %v. Output valid JSON only.", userPrompt, parseErr)
			continue
		}

		title := strings.TrimSpace(jsonutil.FlexibleStringValue(fields.Title))
		description := strings.TrimSpace(jsonutil.FlexibleStringValue(fields.Description))
		valid, reason := validateCardFields(title, description)
		if valid {
			return title, description, nil
		}
		lastReason = reason
		userPrompt = fmt.Sprintf("%s\n\nERROR: %s. Please fix and output valid JSON again.", userPrompt, lastReason)
	}

	return "", "", NewError(ErrorTypeUnknown, fmt.Sprintf("card fields still invalid after %d attempts: %s", maxCardGenerationAttempts, lastReason), false, nil)
}

type cardFields struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
}

// validateCardFields rejects an empty title or description, a title over
// 10 words, and a description over 600 words.
func validateCardFields(title, description string) (bool, string) {
	if title == "" {
		return false, "title is empty"
	}
	if description == "" {
		return false, "description is empty"
	}
	if n := len(strings.Fields(title)); n > 10 {
		return false, fmt.Sprintf("title has %d words (max 10)", n)
	}
	if n := len(strings.Fields(description)); n > 600 {
		return false, fmt.Sprintf("description has %d words (max 600)", n)
	}
	return true, ""
}

