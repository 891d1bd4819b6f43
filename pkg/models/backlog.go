package models

import (
	"time"

	"github.com/google/uuid"
)

// CardStatus mirrors the cards.status column. Only StatusActive participates
// in backlog matching.
type CardStatus int

const (
	CardStatusActive CardStatus = 1
)

// Card is a backlog entity representing a clustered feature request.
type Card struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Status           CardStatus
	NumberOfRequests int
	CreatedAt        time.Time
}

// PromptComment is one ingested prompt attached to a Card.
type PromptComment struct {
	ID          uuid.UUID
	CardID      uuid.UUID
	PromptText  string
	CommentText string
	CreatedAt   time.Time
}

// CardPrompt is the (prompt_text, comment_text) pair the backlog matcher
// samples from a card's children.
type CardPrompt struct {
	PromptText  string
	CommentText string
}

// ActiveCard is the read shape the backlog matcher needs: a card and the
// prompt/comment pairs of its children, for per-card sampling.
type ActiveCard struct {
	ID      uuid.UUID
	Prompts []CardPrompt
}
