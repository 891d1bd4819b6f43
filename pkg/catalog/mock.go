package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

// MockRepository is a configurable stand-in for Repository.
type MockRepository struct {
	VectorCandidatesFunc      func(ctx context.Context, embedding []float32, topK int) ([]models.VectorCandidate, error)
	FeaturesForCandidatesFunc func(ctx context.Context, candidates []models.VectorCandidate) (map[uuid.UUID]models.AppFeatures, error)
	LabelSynonymsFunc         func(ctx context.Context, labels []string) (map[string][]string, error)
	ApplicationNameFunc       func(ctx context.Context, appID uuid.UUID) (string, error)
}

// NewMockRepository creates a mock with no function fields set.
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) VectorCandidates(ctx context.Context, embedding []float32, topK int) ([]models.VectorCandidate, error) {
	if m.VectorCandidatesFunc != nil {
		return m.VectorCandidatesFunc(ctx, embedding, topK)
	}
	return nil, nil
}

func (m *MockRepository) FeaturesForCandidates(ctx context.Context, candidates []models.VectorCandidate) (map[uuid.UUID]models.AppFeatures, error) {
	if m.FeaturesForCandidatesFunc != nil {
		return m.FeaturesForCandidatesFunc(ctx, candidates)
	}
	return map[uuid.UUID]models.AppFeatures{}, nil
}

func (m *MockRepository) LabelSynonyms(ctx context.Context, labels []string) (map[string][]string, error) {
	if m.LabelSynonymsFunc != nil {
		return m.LabelSynonymsFunc(ctx, labels)
	}
	return map[string][]string{}, nil
}

func (m *MockRepository) ApplicationName(ctx context.Context, appID uuid.UUID) (string, error) {
	if m.ApplicationNameFunc != nil {
		return m.ApplicationNameFunc(ctx, appID)
	}
	return "", nil
}

var _ Repository = (*MockRepository)(nil)
