// Package models holds the domain value types shared across the matcher and
// backlog packages: requirement profiles, session state, catalog rows, and
// backlog cards.
package models

// RequirementDelta is what the requirement parser extracts from a single
// buyer turn: a set of newly-mentioned labels, tags, integrations, and an
// optional price ceiling. Unknown JSON keys from the model are ignored;
// missing keys are treated as empty.
type RequirementDelta struct {
	Labels       []string `json:"labels"`
	Tags         []string `json:"tags"`
	Integrations []string `json:"integrations"`
	PriceMax     *float64 `json:"price_max"`
}

// RequirementProfile is the matcher's central value: the structured buyer
// specification handed to the hybrid scorer.
type RequirementProfile struct {
	BuyerText           string
	LabelsMust          []string
	LabelsNice          []string
	TagMust             []string
	TagNice             []string
	IntegrationRequired []string
	IntegrationNice     []string
	PriceMax            *float64
	Notes               string
}
