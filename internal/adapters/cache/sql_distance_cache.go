package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
)

var _ ports.DistanceCache = (*SQLDistanceCache)(nil)

// SQLDistanceCache keeps travel metrics between addresses in Postgres so
// repeated plans for the same depot do not hit the routing API again.
type SQLDistanceCache struct {
	DB *sql.DB
}

func NewSQLDistanceCache(db *sql.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db}
}

// GetMany returns the cached metrics from origin to each destination that has an entry.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("sql distance cache: db is nil")
	}
	if strings.TrimSpace(origin) == "" {
		return nil, errors.New("sql distance cache: origin must not be empty")
	}

	keys := uniqueKeys(destinations)
	if len(keys) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT destination, distance_meters, duration_seconds
	FROM distance_cache
	WHERE origin = $1
		AND destination = ANY($2::text[]);
	`, origin, keys)
	if err != nil {
		return nil, fmt.Errorf("sql distance cache: query distance_cache: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.DistanceResult, len(keys))
	for rows.Next() {
		var dest string
		var r ports.DistanceResult
		if err := rows.Scan(&dest, &r.DistanceMeters, &r.DurationSeconds); err != nil {
			return nil, fmt.Errorf("sql distance cache: scan row: %w", err)
		}
		out[dest] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql distance cache: row iteration: %w", err)
	}

	return out, nil
}

// PutMany upserts the metrics from origin to every destination in results.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.sql.PutMany")(&err)

	if s.DB == nil {
		return errors.New("sql distance cache: db is nil")
	}
	if strings.TrimSpace(origin) == "" {
		return errors.New("sql distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql distance cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`)
	if err != nil {
		return fmt.Errorf("sql distance cache: prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("sql distance cache: empty destination key")
		}
		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds); err != nil {
			return fmt.Errorf("sql distance cache: upsert dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql distance cache: commit: %w", err)
	}

	return nil
}
