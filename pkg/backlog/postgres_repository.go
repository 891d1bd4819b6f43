package backlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/database"
	"github.com/nexusmarket/matcher-core/pkg/logging"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

// postgresRepository is the production Repository backed by pgx against the
// cards/card_prompts_comments tables.
type postgresRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPostgresRepository builds a Repository over an existing connection
// pool.
func NewPostgresRepository(db *database.DB, logger *zap.Logger) Repository {
	return &postgresRepository{db: db, logger: logger.Named("backlog.repository")}
}

var _ Repository = (*postgresRepository)(nil)

func (r *postgresRepository) ActiveCards(ctx context.Context) ([]models.ActiveCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM cards WHERE status = $1`, models.CardStatusActive)
	if err != nil {
		r.logger.Error("active cards query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query active cards: %w", err)
	}

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	rowErr := rows.Err()
	rows.Close()
	if rowErr != nil {
		return nil, fmt.Errorf("error iterating active cards: %w", rowErr)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	promptRows, err := r.db.Query(ctx, `
		SELECT card_id, prompt_text, comment_text
		FROM card_prompts_comments
		WHERE card_id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error("card prompts query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query card prompts: %w", err)
	}
	defer promptRows.Close()

	byCard := make(map[uuid.UUID][]models.CardPrompt, len(ids))
	for promptRows.Next() {
		var cardID uuid.UUID
		var promptText string
		var commentText *string
		if err := promptRows.Scan(&cardID, &promptText, &commentText); err != nil {
			return nil, fmt.Errorf("failed to scan card prompt: %w", err)
		}
		comment := ""
		if commentText != nil {
			comment = *commentText
		}
		byCard[cardID] = append(byCard[cardID], models.CardPrompt{PromptText: promptText, CommentText: comment})
	}
	if err := promptRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card prompts: %w", err)
	}

	cards := make([]models.ActiveCard, len(ids))
	for i, id := range ids {
		cards[i] = models.ActiveCard{ID: id, Prompts: byCard[id]}
	}
	return cards, nil
}

func (r *postgresRepository) AppendPrompt(ctx context.Context, cardID uuid.UUID, promptText, commentText string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("failed to begin append-prompt transaction", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	_, err = tx.Exec(ctx, `
		INSERT INTO card_prompts_comments (id, card_id, prompt_text, comment_text, created_at)
		VALUES ($1, $2, $3, $4, now())`, uuid.New(), cardID, promptText, nullableComment(commentText))
	if err != nil {
		r.logger.Error("failed to insert prompt comment", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("failed to insert prompt comment: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE cards SET number_of_requests = number_of_requests + 1 WHERE id = $1`, cardID)
	if err != nil {
		r.logger.Error("failed to increment card requests", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("failed to increment card requests: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", cardID, apperrors.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit append-prompt transaction", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateCardWithPrompt(ctx context.Context, title, description, promptText, commentText string) (uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	cardID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO cards (id, title, description, status, number_of_requests, created_at)
		VALUES ($1, $2, $3, $4, 1, now())`, cardID, title, description, models.CardStatusActive)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create card: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO card_prompts_comments (id, card_id, prompt_text, comment_text, created_at)
		VALUES ($1, $2, $3, $4, now())`, uuid.New(), cardID, promptText, nullableComment(commentText))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert prompt comment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return cardID, nil
}

func nullableComment(commentText string) *string {
	if commentText == "" {
		return nil
	}
	return &commentText
}
