package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. The
// structured findings are stored as JSONB so the schema survives heuristic
// changes without migrations.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL analysis repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a completed analysis run.
func (r *PostgresRepository) Create(ctx context.Context, analysis *Analysis) error {
	hotspots, err := json.Marshal(analysis.Hotspots)
	if err != nil {
		return fmt.Errorf("marshal hotspots: %w", err)
	}
	attributions, err := json.Marshal(analysis.Attributions)
	if err != nil {
		return fmt.Errorf("marshal attributions: %w", err)
	}
	recommendations, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO analyses (id, generated_at, city_mean_pm25, zone_count, hotspots, attributions, recommendations, narrative, narrative_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		analysis.ID,
		analysis.GeneratedAt,
		analysis.CityMeanPM25,
		analysis.ZoneCount,
		hotspots,
		attributions,
		recommendations,
		nullableString(analysis.Narrative),
		analysis.NarrativeAt,
	)
	return err
}

// Get retrieves an analysis by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Analysis, error) {
	query := `
		SELECT id, generated_at, city_mean_pm25, zone_count, hotspots, attributions, recommendations, narrative, narrative_at
		FROM analyses
		WHERE id = $1
	`

	return r.scanAnalysis(r.pool.QueryRow(ctx, query, id))
}

// GetLatest retrieves the most recent analysis.
func (r *PostgresRepository) GetLatest(ctx context.Context) (*Analysis, error) {
	query := `
		SELECT id, generated_at, city_mean_pm25, zone_count, hotspots, attributions, recommendations, narrative, narrative_at
		FROM analyses
		ORDER BY generated_at DESC
		LIMIT 1
	`

	return r.scanAnalysis(r.pool.QueryRow(ctx, query))
}

// ListRecent retrieves the most recent analyses, newest first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, generated_at, city_mean_pm25, zone_count, hotspots, attributions, recommendations, narrative, narrative_at
		FROM analyses
		ORDER BY generated_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		analysis, err := r.scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

// SetNarrative attaches a model-generated narrative to an analysis.
func (r *PostgresRepository) SetNarrative(ctx context.Context, id, narrative string) error {
	query := `UPDATE analyses SET narrative = $2, narrative_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, narrative, time.Now().UTC())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanAnalysis(row rowScanner) (*Analysis, error) {
	var analysis Analysis
	var hotspots, attributions, recommendations []byte
	var narrative *string

	err := row.Scan(
		&analysis.ID,
		&analysis.GeneratedAt,
		&analysis.CityMeanPM25,
		&analysis.ZoneCount,
		&hotspots,
		&attributions,
		&recommendations,
		&narrative,
		&analysis.NarrativeAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(hotspots, &analysis.Hotspots); err != nil {
		return nil, fmt.Errorf("unmarshal hotspots: %w", err)
	}
	if err := json.Unmarshal(attributions, &analysis.Attributions); err != nil {
		return nil, fmt.Errorf("unmarshal attributions: %w", err)
	}
	if err := json.Unmarshal(recommendations, &analysis.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if narrative != nil {
		analysis.Narrative = *narrative
	}

	return &analysis, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
