package matcher

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

// hardConstraintFailurePercent is assigned to candidates that fail a hard
// constraint; they are not discarded, only floored and skipped for further
// scoring.
const hardConstraintFailurePercent = 5

var freeIndicators = []string{"gratis", "free", "kostenlos", "gratuit"}

var firstNumberPattern = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// Scorer ranks catalog candidates against a requirement profile using the
// hybrid vector + categorical overlap formula.
type Scorer interface {
	// Score applies hard constraints then the hybrid formula to every
	// candidate, returning the top N sorted by similarity_percent
	// descending. features must contain an entry for every candidate's
	// AppSearchID; synonyms maps lowercased required labels to their
	// synonym sets (including themselves).
	Score(profile models.RequirementProfile, candidates []models.VectorCandidate, features map[uuid.UUID]models.AppFeatures, synonyms map[string][]string, topN int) ([]models.ScoredApplication, error)
}

type scorer struct{}

// NewScorer builds the hybrid Scorer.
func NewScorer() Scorer {
	return &scorer{}
}

var _ Scorer = (*scorer)(nil)

func (s *scorer) Score(profile models.RequirementProfile, candidates []models.VectorCandidate, features map[uuid.UUID]models.AppFeatures, synonyms map[string][]string, topN int) ([]models.ScoredApplication, error) {
	if !hasAnyProfileInput(profile) {
		return nil, apperrors.New(apperrors.KindInvalidInput, "requirement profile has no labels, tags, or integrations")
	}
	if len(candidates) == 0 {
		return []models.ScoredApplication{}, nil
	}

	results := make([]models.ScoredApplication, 0, len(candidates))
	for _, c := range candidates {
		f := features[c.AppSearchID]

		var percent int
		if meetsHardConstraints(profile, f, synonyms) {
			percent = scoreToPercentage(hybridScore(profile, c.CosineSimilarity, f))
		} else {
			percent = hardConstraintFailurePercent
		}

		results = append(results, models.ScoredApplication{
			AppID:             c.AppID,
			SimilarityPercent: percent,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityPercent > results[j].SimilarityPercent
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

func hasAnyProfileInput(p models.RequirementProfile) bool {
	return len(p.LabelsMust) > 0 || len(p.LabelsNice) > 0 ||
		len(p.TagMust) > 0 || len(p.TagNice) > 0 ||
		len(p.IntegrationRequired) > 0 || len(p.IntegrationNice) > 0
}

// meetsHardConstraints checks labels_must (with synonyms), integration
// required (normalized), and budget. All must hold.
func meetsHardConstraints(profile models.RequirementProfile, f models.AppFeatures, synonyms map[string][]string) bool {
	if !labelsSatisfied(profile.LabelsMust, f.Labels, synonyms) {
		return false
	}
	if !integrationsSatisfied(profile.IntegrationRequired, f.IntegrationKeys) {
		return false
	}
	return budgetSatisfied(profile.PriceMax, f.PriceText)
}

func labelsSatisfied(required, appLabels []string, synonyms map[string][]string) bool {
	if len(required) == 0 {
		return true
	}
	appSet := lowerSet(appLabels)
	for _, req := range required {
		reqLower := strings.ToLower(req)
		if appSet[reqLower] {
			continue
		}
		matched := false
		for _, syn := range synonyms[reqLower] {
			if appSet[syn] {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func integrationsSatisfied(required, appIntegrations []string) bool {
	if len(required) == 0 {
		return true
	}
	appSet := titleCaseSet(appIntegrations)
	for _, req := range required {
		if !appSet[normalizeIntegrationKey(req)] {
			return false
		}
	}
	return true
}

func budgetSatisfied(priceMax *float64, priceText string) bool {
	if priceMax == nil {
		return true
	}
	value, ok := parsePrice(priceText)
	if !ok {
		return true // unknown price: optimistic inclusion
	}
	return value <= *priceMax
}

// parsePrice extracts price_value from price_text: 0 for a recognized free
// indicator, otherwise the first numeric token. Returns ok=false if nothing
// parses.
func parsePrice(priceText string) (float64, bool) {
	lower := strings.ToLower(priceText)
	for _, indicator := range freeIndicators {
		if strings.Contains(lower, indicator) {
			return 0, true
		}
	}
	match := firstNumberPattern.FindString(priceText)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// hybridScore implements the Step B formula exactly:
//
//	raw   = 0.60*cosine + 0.10*O(tag_must,tags) + 0.10*O(labels_nice,labels)
//	      + 0.05*O(tag_nice,tags) + 0.15*O(integration_nice,integrations)
//	score = raw*0.45 + 0.55
func hybridScore(profile models.RequirementProfile, cosine float64, f models.AppFeatures) float64 {
	raw := 0.60*cosine +
		0.10*overlapRatio(profile.TagMust, f.Tags) +
		0.10*overlapRatio(profile.LabelsNice, f.Labels) +
		0.05*overlapRatio(profile.TagNice, f.Tags) +
		0.15*overlapRatio(titleCaseAll(profile.IntegrationNice), titleCaseAll(f.IntegrationKeys))
	return raw*0.45 + 0.55
}

// overlapRatio is O(buyer_list, app_list): case-insensitive intersection
// size over len(buyer_list), or 0.1 if buyer_list is empty.
func overlapRatio(buyerList, appList []string) float64 {
	if len(buyerList) == 0 {
		return 0.1
	}
	appSet := lowerSet(appList)
	buyerSet := lowerSet(buyerList)

	matches := 0
	for b := range buyerSet {
		if appSet[b] {
			matches++
		}
	}
	return float64(matches) / float64(len(buyerSet))
}

// scoreToPercentage applies the sigmoid percentage mapping:
// round(100 / (1 + exp(-10*(score-0.5)))), clamped to [0,100].
func scoreToPercentage(score float64) int {
	transformed := 1 / (1 + math.Exp(-10*(score-0.5)))
	percent := int(math.Round(100 * transformed))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// normalizeIntegrationKey renders an integration key in Title Case with
// whitespace trimmed, e.g. "stripe" -> "Stripe", "google workspace" ->
// "Google Workspace".
func normalizeIntegrationKey(key string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(key)))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func titleCaseAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = normalizeIntegrationKey(v)
	}
	return out
}

func titleCaseSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[normalizeIntegrationKey(v)] = true
	}
	return set
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}
