// Package matcher implements the interactive requirement-gathering and
// hybrid scoring pipeline: turn parsing, session validation, question
// synthesis, scoring, and the controller that sequences them.
package matcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/llm"
	"github.com/nexusmarket/matcher-core/pkg/models"
	"github.com/nexusmarket/matcher-core/pkg/setutil"
)

// Parser extracts a requirement delta from one buyer turn.
type Parser interface {
	// Parse translates turnText to English and extracts labels, tags,
	// integrations, and an optional price ceiling, given what the session
	// already knows.
	Parse(ctx context.Context, turnText string, prior *models.Accumulated) (*models.RequirementDelta, error)
}

type parser struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// NewParser builds a Parser backed by the given gateway.
func NewParser(gateway llm.Gateway, logger *zap.Logger) Parser {
	return &parser{gateway: gateway, logger: logger.Named("matcher.parser")}
}

var _ Parser = (*parser)(nil)

func (p *parser) Parse(ctx context.Context, turnText string, prior *models.Accumulated) (*models.RequirementDelta, error) {
	english, err := p.gateway.TranslateToEnglish(ctx, turnText)
	if err != nil {
		return nil, fmt.Errorf("translate turn: %w", err)
	}

	delta, err := p.gateway.ExtractRequirements(ctx, english, prior)
	if err != nil {
		return nil, fmt.Errorf("extract requirements: %w", err)
	}
	return delta, nil
}

// MergeDelta folds delta into accumulated using case-insensitive set union
// that preserves first-seen casing; price_max adopts the minimum of the two
// when both are present.
func MergeDelta(accumulated models.Accumulated, delta *models.RequirementDelta) models.Accumulated {
	labels := setutil.NewOrderedSet(accumulated.Labels...)
	tags := setutil.NewOrderedSet(accumulated.Tags...)
	integrations := setutil.NewOrderedSet(accumulated.Integrations...)

	if delta != nil {
		labels.AddAll(delta.Labels)
		tags.AddAll(delta.Tags)
		integrations.AddAll(delta.Integrations)
	}

	priceMax := accumulated.PriceMax
	if delta != nil && delta.PriceMax != nil {
		if priceMax == nil || *delta.PriceMax < *priceMax {
			priceMax = delta.PriceMax
		}
	}

	return models.Accumulated{
		Labels:       labels.Values(),
		Tags:         tags.Values(),
		Integrations: integrations.Values(),
		PriceMax:     priceMax,
	}
}
