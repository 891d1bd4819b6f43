package llm

import (
	"context"
	"fmt"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

// MockGateway is a configurable stand-in for Gateway. Set the function
// fields to control behavior in tests; unset fields fall back to an
// identity/zero-value behavior that is convenient for "happy path" tests.
type MockGateway struct {
	TranslateToEnglishFunc func(ctx context.Context, text string) (string, error)
	ExtractRequirementsFunc func(ctx context.Context, turnText string, prior *models.Accumulated) (*models.RequirementDelta, error)
	GetEmbeddingFunc        func(ctx context.Context, text string) ([]float32, error)
	GenerateCardFieldsFunc  func(ctx context.Context, promptText string) (string, string, error)
	GenerateQuestionFunc    func(ctx context.Context, dimension string, needed int, examples []string) (string, error)

	TranslateCalls  int
	ExtractCalls    int
	EmbeddingCalls  int
	CardFieldsCalls int
	QuestionCalls   int
}

// NewMockGateway creates a mock with no function fields set, so every method
// uses its default behavior until its *Func field is assigned.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	m.TranslateCalls++
	if m.TranslateToEnglishFunc != nil {
		return m.TranslateToEnglishFunc(ctx, text)
	}
	return text, nil
}

func (m *MockGateway) ExtractRequirements(ctx context.Context, turnText string, prior *models.Accumulated) (*models.RequirementDelta, error) {
	m.ExtractCalls++
	if m.ExtractRequirementsFunc != nil {
		return m.ExtractRequirementsFunc(ctx, turnText, prior)
	}
	return &models.RequirementDelta{}, nil
}

func (m *MockGateway) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.EmbeddingCalls++
	if m.GetEmbeddingFunc != nil {
		return m.GetEmbeddingFunc(ctx, text)
	}
	return make([]float32, 1536), nil
}

func (m *MockGateway) GenerateCardFields(ctx context.Context, promptText string) (string, string, error) {
	m.CardFieldsCalls++
	if m.GenerateCardFieldsFunc != nil {
		return m.GenerateCardFieldsFunc(ctx, promptText)
	}
	return "Generated request", promptText, nil
}

func (m *MockGateway) GenerateQuestion(ctx context.Context, dimension string, needed int, examples []string) (string, error) {
	m.QuestionCalls++
	if m.GenerateQuestionFunc != nil {
		return m.GenerateQuestionFunc(ctx, dimension, needed, examples)
	}
	return fmt.Sprintf("Can you tell me more about the %s you need?", dimension), nil
}

// Reset clears call tracking counters.
func (m *MockGateway) Reset() {
	m.TranslateCalls = 0
	m.ExtractCalls = 0
	m.EmbeddingCalls = 0
	m.CardFieldsCalls = 0
	m.QuestionCalls = 0
}

var _ Gateway = (*MockGateway)(nil)
