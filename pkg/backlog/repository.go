// Package backlog implements the unmatched-prompt deduplication pipeline:
// sampling existing backlog cards for a near-duplicate, and transactionally
// recording a new prompt against an existing or freshly created card.
package backlog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

// Repository is the storage surface the backlog matcher and writer need over
// cards and card_prompts_comments.
type Repository interface {
	// ActiveCards returns every card with status=active, each carrying all
	// of its prompt/comment children for per-card sampling.
	ActiveCards(ctx context.Context) ([]models.ActiveCard, error)

	// AppendPrompt inserts a prompt_comment row for cardID and atomically
	// increments the card's number_of_requests, within one transaction.
	AppendPrompt(ctx context.Context, cardID uuid.UUID, promptText, commentText string) error

	// CreateCardWithPrompt creates a new active card with
	// number_of_requests=1 and inserts its first prompt_comment row, within
	// one transaction. Returns the new card's id.
	CreateCardWithPrompt(ctx context.Context, title, description, promptText, commentText string) (uuid.UUID, error)
}
