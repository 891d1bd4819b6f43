package backlog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

// MockRepository is a configurable stand-in for Repository.
type MockRepository struct {
	ActiveCardsFunc          func(ctx context.Context) ([]models.ActiveCard, error)
	AppendPromptFunc         func(ctx context.Context, cardID uuid.UUID, promptText, commentText string) error
	CreateCardWithPromptFunc func(ctx context.Context, title, description, promptText, commentText string) (uuid.UUID, error)

	AppendPromptCalls int
	CreateCardCalls   int
}

// NewMockRepository creates a mock with no function fields set.
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) ActiveCards(ctx context.Context) ([]models.ActiveCard, error) {
	if m.ActiveCardsFunc != nil {
		return m.ActiveCardsFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepository) AppendPrompt(ctx context.Context, cardID uuid.UUID, promptText, commentText string) error {
	m.AppendPromptCalls++
	if m.AppendPromptFunc != nil {
		return m.AppendPromptFunc(ctx, cardID, promptText, commentText)
	}
	return nil
}

func (m *MockRepository) CreateCardWithPrompt(ctx context.Context, title, description, promptText, commentText string) (uuid.UUID, error) {
	m.CreateCardCalls++
	if m.CreateCardWithPromptFunc != nil {
		return m.CreateCardWithPromptFunc(ctx, title, description, promptText, commentText)
	}
	return uuid.New(), nil
}

var _ Repository = (*MockRepository)(nil)

// MockMatcher is a configurable stand-in for Matcher.
type MockMatcher struct {
	FindBestMatchFunc func(ctx context.Context, promptText, commentText string, threshold int) (uuid.UUID, int, error)
}

func NewMockMatcher() *MockMatcher {
	return &MockMatcher{}
}

func (m *MockMatcher) FindBestMatch(ctx context.Context, promptText, commentText string, threshold int) (uuid.UUID, int, error) {
	if m.FindBestMatchFunc != nil {
		return m.FindBestMatchFunc(ctx, promptText, commentText, threshold)
	}
	return NoMatch, 0, nil
}

var _ Matcher = (*MockMatcher)(nil)
