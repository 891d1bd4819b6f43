package matcher

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

func TestOverlapRatio(t *testing.T) {
	tests := []struct {
		name     string
		buyer    []string
		app      []string
		expected float64
	}{
		{name: "empty buyer list defaults to 0.1", buyer: nil, app: []string{"CRM"}, expected: 0.1},
		{name: "full overlap", buyer: []string{"CRM", "Sales"}, app: []string{"crm", "sales", "Reporting"}, expected: 1.0},
		{name: "partial overlap case-insensitive", buyer: []string{"CRM", "Sales"}, app: []string{"crm"}, expected: 0.5},
		{name: "no overlap", buyer: []string{"CRM"}, app: []string{"Sales"}, expected: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, overlapRatio(tt.buyer, tt.app), 1e-9)
		})
	}
}

func TestScoreToPercentage_MidpointIsFifty(t *testing.T) {
	assert.Equal(t, 50, scoreToPercentage(0.5))
}

func TestScoreToPercentage_Clamped(t *testing.T) {
	assert.Equal(t, 100, scoreToPercentage(10))
	assert.Equal(t, 0, scoreToPercentage(-10))
}

func TestNormalizeIntegrationKey(t *testing.T) {
	assert.Equal(t, "Stripe", normalizeIntegrationKey("  stripe "))
	assert.Equal(t, "Google Workspace", normalizeIntegrationKey("google workspace"))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name      string
		priceText string
		wantValue float64
		wantOK    bool
	}{
		{name: "free indicator", priceText: "Gratis tier available", wantValue: 0, wantOK: true},
		{name: "numeric with currency prefix", priceText: "$49.99/month", wantValue: 49.99, wantOK: true},
		{name: "unparsable", priceText: "contact us", wantValue: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := parsePrice(tt.priceText)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.wantValue, value, 1e-9)
			}
		})
	}
}

func TestScore_RejectsEmptyProfile(t *testing.T) {
	s := NewScorer()
	_, err := s.Score(models.RequirementProfile{}, []models.VectorCandidate{{AppID: uuid.New(), AppSearchID: uuid.New()}}, nil, nil, 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestScore_EmptyCandidatesReturnsEmptyResult(t *testing.T) {
	s := NewScorer()
	profile := models.RequirementProfile{LabelsMust: []string{"CRM"}}
	results, err := s.Score(profile, nil, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScore_HardConstraintFailureFloorsAtFivePercent(t *testing.T) {
	s := NewScorer()
	searchID := uuid.New()
	appID := uuid.New()
	profile := models.RequirementProfile{LabelsMust: []string{"CRM"}}
	candidates := []models.VectorCandidate{{AppSearchID: searchID, AppID: appID, CosineSimilarity: 0.99}}
	features := map[uuid.UUID]models.AppFeatures{searchID: {Labels: []string{"Accounting"}}}

	results, err := s.Score(profile, candidates, features, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].SimilarityPercent)
}

func TestScore_LabelSynonymSatisfiesHardConstraint(t *testing.T) {
	s := NewScorer()
	searchID := uuid.New()
	appID := uuid.New()
	profile := models.RequirementProfile{LabelsMust: []string{"CRM"}}
	candidates := []models.VectorCandidate{{AppSearchID: searchID, AppID: appID, CosineSimilarity: 0.9}}
	features := map[uuid.UUID]models.AppFeatures{searchID: {Labels: []string{"Customer Relationship Management"}}}
	synonyms := map[string][]string{"crm": {"crm", "customer relationship management"}}

	results, err := s.Score(profile, candidates, features, synonyms, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].SimilarityPercent, 5)
}

func TestScore_BudgetExceededFails(t *testing.T) {
	s := NewScorer()
	searchID := uuid.New()
	appID := uuid.New()
	priceMax := 50.0
	profile := models.RequirementProfile{LabelsMust: []string{"CRM"}, PriceMax: &priceMax}
	candidates := []models.VectorCandidate{{AppSearchID: searchID, AppID: appID, CosineSimilarity: 0.9, PriceText: "$99/month"}}
	features := map[uuid.UUID]models.AppFeatures{searchID: {Labels: []string{"CRM"}, PriceText: "$99/month"}}

	results, err := s.Score(profile, candidates, features, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].SimilarityPercent)
}

func TestScore_SortsDescendingAndRespectsTopN(t *testing.T) {
	s := NewScorer()
	profile := models.RequirementProfile{LabelsNice: []string{"CRM"}}

	low := models.VectorCandidate{AppSearchID: uuid.New(), AppID: uuid.New(), CosineSimilarity: 0.1}
	high := models.VectorCandidate{AppSearchID: uuid.New(), AppID: uuid.New(), CosineSimilarity: 0.9}
	features := map[uuid.UUID]models.AppFeatures{
		low.AppSearchID:  {Labels: []string{"CRM"}},
		high.AppSearchID: {Labels: []string{"CRM"}},
	}

	results, err := s.Score(profile, []models.VectorCandidate{low, high}, features, nil, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, high.AppID, results[0].AppID)
}
