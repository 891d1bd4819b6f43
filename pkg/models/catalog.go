package models

import "github.com/google/uuid"

// VectorCandidate is one row returned by the catalog's nearest-neighbor
// search: an application close to the buyer embedding in cosine space.
type VectorCandidate struct {
	AppSearchID      uuid.UUID
	AppID            uuid.UUID
	PriceText        string
	CosineSimilarity float64
}

// AppFeatures is the per-application categorical data the scorer needs,
// keyed by AppSearchID for labels/integrations and AppID for tags (the
// catalog tables key these two ways; repositories must preserve the split).
type AppFeatures struct {
	Labels          []string
	IntegrationKeys []string
	Tags            []string
	PriceText       string
}

// LabelSynonyms is one row of the label-synonym lookup table: a catalog
// label and the alternate spellings that should also satisfy it as a hard
// constraint.
type LabelSynonyms struct {
	Label    string
	Synonyms []string
}

// ScoredApplication is one entry of a finalize() result: an application and
// the percentage the hybrid scorer assigned it.
type ScoredApplication struct {
	AppID             uuid.UUID
	Name              string
	SimilarityPercent int
}
