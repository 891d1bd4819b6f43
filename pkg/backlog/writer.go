package backlog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/llm"
)

const (
	minPromptTextLength  = 5
	maxPromptTextLength  = 2000
	maxCommentTextLength = 1000
)

// Writer ingests an unmatched or feature-request prompt: it either attaches
// the prompt to the best-matching existing card, or generates a new card
// from it.
type Writer interface {
	// Ingest validates input, finds the best matching card via Matcher, and
	// writes either an AppendPrompt or a CreateCardWithPrompt, both
	// transactional. It is at-least-once: callers retrying on timeout may
	// produce a duplicate card.
	Ingest(ctx context.Context, promptText, commentText string) error
}

type writer struct {
	repo           Repository
	matcher        Matcher
	gateway        llm.Gateway
	matchThreshold int
	logger         *zap.Logger
}

// NewWriter builds a Writer backed by repo, matcher, and gateway. matchThreshold
// is the minimum similarity percentage (see DefaultMatchThresholdPercent) required
// to attach an incoming prompt to an existing card rather than create one; callers
// passing <= 0 get DefaultMatchThresholdPercent.
func NewWriter(repo Repository, matcher Matcher, gateway llm.Gateway, matchThreshold int, logger *zap.Logger) Writer {
	if matchThreshold <= 0 {
		matchThreshold = DefaultMatchThresholdPercent
	}
	return &writer{repo: repo, matcher: matcher, gateway: gateway, matchThreshold: matchThreshold, logger: logger.Named("backlog.writer")}
}

var _ Writer = (*writer)(nil)

func (w *writer) Ingest(ctx context.Context, promptText, commentText string) error {
	trimmedPrompt := strings.TrimSpace(promptText)
	if n := utf8.RuneCountInString(trimmedPrompt); n < minPromptTextLength || n > maxPromptTextLength {
		return apperrors.New(apperrors.KindInvalidInput, fmt.Sprintf("prompt_text must be between %d and %d characters", minPromptTextLength, maxPromptTextLength))
	}
	trimmedComment := strings.TrimSpace(commentText)
	if n := utf8.RuneCountInString(trimmedComment); n > maxCommentTextLength {
		return apperrors.New(apperrors.KindInvalidInput, fmt.Sprintf("comment_text must be at most %d characters", maxCommentTextLength))
	}

	englishPrompt, err := w.gateway.TranslateToEnglish(ctx, trimmedPrompt)
	if err != nil {
		return apperrors.Wrap(apperrors.KindExternalService, "failed to translate prompt", err)
	}
	englishComment, err := w.gateway.TranslateToEnglish(ctx, trimmedComment)
	if err != nil {
		return apperrors.Wrap(apperrors.KindExternalService, "failed to translate comment", err)
	}

	cardID, _, err := w.matcher.FindBestMatch(ctx, englishPrompt, englishComment, w.matchThreshold)
	if err != nil {
		return apperrors.Wrap(apperrors.KindExternalService, "failed to find matching card", err)
	}

	if cardID != uuid.Nil {
		if err := w.repo.AppendPrompt(ctx, cardID, trimmedPrompt, trimmedComment); err != nil {
			return apperrors.Wrap(apperrors.KindStorage, "failed to append prompt to card", err)
		}
		return nil
	}

	normalized := englishPrompt
	if englishComment != "" {
		normalized = normalized + "\n" + englishComment
	}
	title, description, err := w.gateway.GenerateCardFields(ctx, normalized)
	if err != nil {
		return apperrors.Wrap(apperrors.KindExternalService, "failed to generate card fields", err)
	}

	// The generated title/description are derived from the English-normalized
	// prompt; the original prompt text is stored verbatim in the child row.
	if _, err := w.repo.CreateCardWithPrompt(ctx, title, description, trimmedPrompt, trimmedComment); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, "failed to create new card", err)
	}
	return nil
}
