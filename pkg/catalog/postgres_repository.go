package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/apperrors"
	"github.com/nexusmarket/matcher-core/pkg/database"
	"github.com/nexusmarket/matcher-core/pkg/logging"
	"github.com/nexusmarket/matcher-core/pkg/models"
)

// postgresRepository is the production Repository backed by pgx against the
// schema described by the application/application_search/labels family of
// tables.
type postgresRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPostgresRepository builds a Repository over an existing connection
// pool.
func NewPostgresRepository(db *database.DB, logger *zap.Logger) Repository {
	return &postgresRepository{db: db, logger: logger.Named("catalog.repository")}
}

var _ Repository = (*postgresRepository)(nil)

func (r *postgresRepository) VectorCandidates(ctx context.Context, embedding []float32, topK int) ([]models.VectorCandidate, error) {
	vectorLiteral := encodeVector(embedding)

	rows, err := r.db.Query(ctx, `
		SELECT
			s.id AS app_search_id,
			s.app_id,
			a.price_text,
			1 - (s.embedding <=> $1::vector) AS cosine_similarity
		FROM application_search s
		JOIN application a ON a.id = s.app_id
		WHERE s.embedding IS NOT NULL
		ORDER BY s.embedding <=> $1::vector
		LIMIT $2`, vectorLiteral, topK)
	if err != nil {
		r.logger.Error("vector candidate query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query vector candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.VectorCandidate
	for rows.Next() {
		c, err := scanVectorCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vector candidates: %w", err)
	}
	return candidates, nil
}

func (r *postgresRepository) FeaturesForCandidates(ctx context.Context, candidates []models.VectorCandidate) (map[uuid.UUID]models.AppFeatures, error) {
	result := make(map[uuid.UUID]models.AppFeatures, len(candidates))
	if len(candidates) == 0 {
		return result, nil
	}

	searchIDs := make([]uuid.UUID, len(candidates))
	appIDs := make([]uuid.UUID, len(candidates))
	priceByAppID := make(map[uuid.UUID]string, len(candidates))
	for i, c := range candidates {
		searchIDs[i] = c.AppSearchID
		appIDs[i] = c.AppID
		priceByAppID[c.AppID] = c.PriceText
		result[c.AppSearchID] = models.AppFeatures{PriceText: c.PriceText}
	}

	labels, err := r.labelsBySearchID(ctx, searchIDs)
	if err != nil {
		return nil, err
	}
	integrations, err := r.integrationsBySearchID(ctx, searchIDs)
	if err != nil {
		return nil, err
	}
	tags, err := r.tagsByAppID(ctx, appIDs)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		features := result[c.AppSearchID]
		features.Labels = labels[c.AppSearchID]
		features.IntegrationKeys = integrations[c.AppSearchID]
		features.Tags = tags[c.AppID]
		result[c.AppSearchID] = features
	}
	return result, nil
}

func (r *postgresRepository) labelsBySearchID(ctx context.Context, searchIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT app_search_id, label
		FROM application_labels
		WHERE app_search_id = ANY($1)`, searchIDs)
	if err != nil {
		r.logger.Error("application labels query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query application labels: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]string, len(searchIDs))
	for rows.Next() {
		var id uuid.UUID
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("failed to scan application label: %w", err)
		}
		result[id] = append(result[id], label)
	}
	return result, rows.Err()
}

func (r *postgresRepository) integrationsBySearchID(ctx context.Context, searchIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT app_search_id, integration_key
		FROM application_integration_keys
		WHERE app_search_id = ANY($1)`, searchIDs)
	if err != nil {
		r.logger.Error("integration keys query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query integration keys: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]string, len(searchIDs))
	for rows.Next() {
		var id uuid.UUID
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("failed to scan integration key: %w", err)
		}
		result[id] = append(result[id], key)
	}
	return result, rows.Err()
}

func (r *postgresRepository) tagsByAppID(ctx context.Context, appIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT app_id, tag
		FROM apps_tags
		WHERE app_id = ANY($1)`, appIDs)
	if err != nil {
		r.logger.Error("tags query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]string, len(appIDs))
	for rows.Next() {
		var id uuid.UUID
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		result[id] = append(result[id], tag)
	}
	return result, rows.Err()
}

func (r *postgresRepository) LabelSynonyms(ctx context.Context, labels []string) (map[string][]string, error) {
	result := make(map[string][]string, len(labels))
	if len(labels) == 0 {
		return result, nil
	}

	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.ToLower(l)
	}

	rows, err := r.db.Query(ctx, `
		SELECT label, synonyms
		FROM labels
		WHERE LOWER(label) = ANY($1)`, lowered)
	if err != nil {
		r.logger.Error("label synonyms query failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to query label synonyms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var synonyms []string
		if err := rows.Scan(&label, &synonyms); err != nil {
			return nil, fmt.Errorf("failed to scan label synonyms: %w", err)
		}
		key := strings.ToLower(label)
		set := append([]string{key}, lowerAll(synonyms)...)
		result[key] = set
	}
	return result, rows.Err()
}

func (r *postgresRepository) ApplicationName(ctx context.Context, appID uuid.UUID) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM application WHERE id = $1`, appID).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("application %s: %w", appID, apperrors.ErrNotFound)
		}
		r.logger.Error("application name query failed", zap.String("error", logging.SanitizeError(err)))
		return "", fmt.Errorf("failed to query application name: %w", err)
	}
	return name, nil
}

func scanVectorCandidate(rows pgx.Rows) (*models.VectorCandidate, error) {
	c := &models.VectorCandidate{}
	err := rows.Scan(&c.AppSearchID, &c.AppID, &c.PriceText, &c.CosineSimilarity)
	if err != nil {
		return nil, fmt.Errorf("failed to scan vector candidate: %w", err)
	}
	return c, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// encodeVector renders a float32 embedding as the pgvector text literal
// format ("[v1,v2,...]") expected by the ::vector cast.
func encodeVector(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
