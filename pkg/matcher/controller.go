package matcher

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/catalog"
	"github.com/nexusmarket/matcher-core/pkg/llm"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

const (
	minPromptLength = 10
	maxPromptLength = 2000
	minAnswerLength = 1
	maxAnswerLength = 1000
	splitSize       = 6

	// fallbackTopK and fallbackTopN apply only if NewController is given a
	// non-positive default for either.
	fallbackTopK = 30
	fallbackTopN = 10
)

// Controller sequences the interactive requirement-gathering flow: start,
// continue, and finalize. It holds no per-request state itself; the Session
// value is the client-held continuation.
type Controller interface {
	Start(ctx context.Context, promptText string) (*models.MatchResponse, error)
	Continue(ctx context.Context, session models.Session, answerText string) (*models.MatchResponse, error)
	Finalize(ctx context.Context, session models.Session, topK, topN int) (*models.MatchResponse, error)
}

type controller struct {
	gateway     llm.Gateway
	catalog     catalog.Repository
	validator   Validator
	parser      Parser
	question    QuestionSynthesizer
	scorer      Scorer
	defaultTopK int
	defaultTopN int
	logger      *zap.Logger
}

// NewController wires the parser, validator, question synthesizer, and
// scorer behind the three interactive operations. defaultTopK/defaultTopN are
// the candidate-set sizes Finalize falls back to when called with <= 0; a
// caller passing <= 0 for either gets fallbackTopK/fallbackTopN.
func NewController(gateway llm.Gateway, repo catalog.Repository, validator Validator, parser Parser, question QuestionSynthesizer, scorer Scorer, defaultTopK, defaultTopN int, logger *zap.Logger) Controller {
	if defaultTopK <= 0 {
		defaultTopK = fallbackTopK
	}
	if defaultTopN <= 0 {
		defaultTopN = fallbackTopN
	}
	return &controller{
		gateway:     gateway,
		catalog:     repo,
		validator:   validator,
		parser:      parser,
		question:    question,
		scorer:      scorer,
		defaultTopK: defaultTopK,
		defaultTopN: defaultTopN,
		logger:      logger.Named("matcher.controller"),
	}
}

var _ Controller = (*controller)(nil)

func (c *controller) Start(ctx context.Context, promptText string) (*models.MatchResponse, error) {
	trimmed := strings.TrimSpace(promptText)
	if n := utf8.RuneCountInString(trimmed); n < minPromptLength || n > maxPromptLength {
		return nil, apperrors.New(apperrors.KindInvalidInput, fmt.Sprintf("prompt_text must be between %d and %d characters", minPromptLength, maxPromptLength))
	}

	session := models.Session{
		Turns: []models.Turn{{Role: models.RoleUser, Text: trimmed}},
	}
	return c.advance(ctx, session, trimmed, nil)
}

func (c *controller) Continue(ctx context.Context, session models.Session, answerText string) (*models.MatchResponse, error) {
	if len(session.Turns) == 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "session has no turns")
	}
	if session.IsValid {
		return nil, apperrors.New(apperrors.KindInvalidInput, "session is already valid; call finalize instead")
	}

	trimmed := strings.TrimSpace(answerText)
	if n := utf8.RuneCountInString(trimmed); n < minAnswerLength || n > maxAnswerLength {
		return nil, apperrors.New(apperrors.KindInvalidInput, fmt.Sprintf("answer_text must be between %d and %d characters", minAnswerLength, maxAnswerLength))
	}

	session.Turns = append(session.Turns, models.Turn{Role: models.RoleUser, Text: trimmed})
	return c.advance(ctx, session, trimmed, &session.Accumulated)
}

// advance runs the shared parse -> merge -> validate -> branch sequence used
// by both start and continue.
func (c *controller) advance(ctx context.Context, session models.Session, turnText string, prior *models.Accumulated) (*models.MatchResponse, error) {
	delta, err := c.parser.Parse(ctx, turnText, prior)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExternalService, "failed to parse turn", err)
	}

	session.Accumulated = MergeDelta(session.Accumulated, delta)
	session.Missing = c.validator.Validate(session.Accumulated)
	session.IsValid = IsValid(session.Missing)

	if session.IsValid {
		finalPrompt := composeFinalPrompt(session)
		return &models.MatchResponse{
			Status:      models.StatusReady,
			Session:     session,
			FinalPrompt: finalPrompt,
		}, nil
	}

	question, err := c.question.Synthesize(ctx, session.Missing, len(session.Turns))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExternalService, "failed to synthesize question", err)
	}

	return &models.MatchResponse{
		Status:   models.StatusNeedsMore,
		Session:  session,
		Question: question,
		Missing:  session.Missing,
	}, nil
}

func (c *controller) Finalize(ctx context.Context, session models.Session, topK, topN int) (*models.MatchResponse, error) {
	if !session.IsValid {
		return nil, apperrors.New(apperrors.KindInvalidInput, "session is not yet valid")
	}
	if topK <= 0 {
		topK = c.defaultTopK
	}
	if topN <= 0 {
		topN = c.defaultTopN
	}

	profile := buildRequirementProfile(session)
	finalPrompt := composeFinalPrompt(session)
	profile.BuyerText = finalPrompt

	embedding, err := c.gateway.GetEmbedding(ctx, finalPrompt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExternalService, "failed to embed final prompt", err)
	}

	candidates, err := c.catalog.VectorCandidates(ctx, embedding, topK)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, "failed to fetch vector candidates", err)
	}

	features, err := c.catalog.FeaturesForCandidates(ctx, candidates)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, "failed to fetch candidate features", err)
	}

	synonyms, err := c.catalog.LabelSynonyms(ctx, profile.LabelsMust)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, "failed to fetch label synonyms", err)
	}

	scored, err := c.scorer.Score(profile, candidates, features, synonyms, topN)
	if err != nil {
		return nil, err
	}

	for i, result := range scored {
		name, err := c.catalog.ApplicationName(ctx, result.AppID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindStorage, "failed to fetch application name", err)
		}
		scored[i].Name = name
	}

	return &models.MatchResponse{
		Status:      models.StatusReady,
		Session:     session,
		FinalPrompt: finalPrompt,
		Results:     scored,
	}, nil
}

// composeFinalPrompt concatenates every user turn, prefixed with a header
// and the accumulated labels/tags/integrations as labeled sections.
func composeFinalPrompt(session models.Session) string {
	if len(session.Turns) == 0 {
		return ""
	}

	var sections []string
	sections = append(sections, "User need: "+session.Turns[0].Text)

	if len(session.Turns) > 1 {
		var clarifications []string
		for _, turn := range session.Turns[1:] {
			clarifications = append(clarifications, "- "+turn.Text)
		}
		sections = append(sections, "Clarifications:\n"+strings.Join(clarifications, "\n"))
	}

	if len(session.Accumulated.Labels) > 0 {
		sections = append(sections, "Extracted labels: "+strings.Join(session.Accumulated.Labels, ", "))
	}
	if len(session.Accumulated.Tags) > 0 {
		sections = append(sections, "Extracted tags: "+strings.Join(session.Accumulated.Tags, ", "))
	}
	if len(session.Accumulated.Integrations) > 0 {
		sections = append(sections, "Extracted integrations: "+strings.Join(session.Accumulated.Integrations, ", "))
	}

	return strings.Join(sections, "\n\n")
}

// buildRequirementProfile splits accumulated.labels into first <=6 ->
// labels_must, next <=6 -> labels_nice, and the same for tags and
// integrations. price_max comes straight from accumulated.
func buildRequirementProfile(session models.Session) models.RequirementProfile {
	labelsMust, labelsNice := splitMustNice(session.Accumulated.Labels)
	tagMust, tagNice := splitMustNice(session.Accumulated.Tags)
	integrationRequired, integrationNice := splitMustNice(session.Accumulated.Integrations)

	return models.RequirementProfile{
		LabelsMust:          labelsMust,
		LabelsNice:          labelsNice,
		TagMust:             tagMust,
		TagNice:             tagNice,
		IntegrationRequired: integrationRequired,
		IntegrationNice:     integrationNice,
		PriceMax:            session.Accumulated.PriceMax,
		Notes:               fmt.Sprintf("Interactive session with %d turn(s)", len(session.Turns)),
	}
}

func splitMustNice(values []string) (must, nice []string) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) <= splitSize {
		return values, nil
	}
	must = values[:splitSize]
	end := splitSize * 2
	if end > len(values) {
		end = len(values)
	}
	nice = values[splitSize:end]
	return must, nice
}
