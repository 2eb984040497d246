package alert

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const alertColumns = `id, zone_id, zone_name, level, pm25, aqi, message, recommended_actions, created_at, resolved_at`

// Create stores a new alert.
func (r *PostgresRepository) Create(ctx context.Context, alert *Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.ZoneID,
		alert.ZoneName,
		alert.Level,
		alert.PM25,
		alert.AQI,
		alert.Message,
		alert.RecommendedActions,
		alert.CreatedAt,
		alert.ResolvedAt,
	)
	return err
}

// GetActiveByZone retrieves the unresolved alert for a zone, if any.
func (r *PostgresRepository) GetActiveByZone(ctx context.Context, zoneID string) (*Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE zone_id = $1 AND resolved_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var alert Alert
	err := r.pool.QueryRow(ctx, query, zoneID).Scan(
		&alert.ID,
		&alert.ZoneID,
		&alert.ZoneName,
		&alert.Level,
		&alert.PM25,
		&alert.AQI,
		&alert.Message,
		&alert.RecommendedActions,
		&alert.CreatedAt,
		&alert.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}

	return &alert, nil
}

// List retrieves alerts, newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Alert, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`
	if opts.ActiveOnly {
		query = `
			SELECT ` + alertColumns + `
			FROM alerts
			WHERE resolved_at IS NULL
			ORDER BY created_at DESC
			LIMIT $1
		`
	}

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var alert Alert
		err := rows.Scan(
			&alert.ID,
			&alert.ZoneID,
			&alert.ZoneName,
			&alert.Level,
			&alert.PM25,
			&alert.AQI,
			&alert.Message,
			&alert.RecommendedActions,
			&alert.CreatedAt,
			&alert.ResolvedAt,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, &alert)
	}

	return alerts, rows.Err()
}

// Resolve marks an alert resolved.
func (r *PostgresRepository) Resolve(ctx context.Context, id string) error {
	query := `UPDATE alerts SET resolved_at = $2 WHERE id = $1 AND resolved_at IS NULL`

	result, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
