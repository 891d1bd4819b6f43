// Package catalog provides data access over the application catalog:
// vector candidate search, label/integration/tag lookups, and label synonym
// expansion.
package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

// Repository is the read-only surface the matcher needs over the
// application catalog. Implementations join application_search,
// application_labels, and application_integration_keys on app_search_id;
// apps_tags is keyed by app_id.
type Repository interface {
	// VectorCandidates returns the topK closest application_search rows to
	// embedding by cosine distance, most similar first.
	VectorCandidates(ctx context.Context, embedding []float32, topK int) ([]models.VectorCandidate, error)

	// FeaturesForCandidates batch-loads labels, integration keys, and tags
	// for the given candidates. Labels and integration keys are keyed by
	// app_search_id; tags are keyed by app_id; candidates carry both, so the
	// join is resolved internally. The returned map always has an entry
	// (possibly with empty slices) keyed by app_search_id for every
	// candidate passed in.
	FeaturesForCandidates(ctx context.Context, candidates []models.VectorCandidate) (map[uuid.UUID]models.AppFeatures, error)

	// LabelSynonyms looks up synonym sets for the given labels, keyed by
	// lowercased label. The label itself is always included in its own
	// synonym set.
	LabelSynonyms(ctx context.Context, labels []string) (map[string][]string, error)

	// ApplicationName resolves an application_id to its display name.
	ApplicationName(ctx context.Context, appID uuid.UUID) (string, error)
}
