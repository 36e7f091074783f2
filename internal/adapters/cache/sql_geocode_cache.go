package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
)

var _ ports.GeocodeCache = (*SQLGeocodeCache)(nil)

// SQLGeocodeCache maps stop addresses to coordinates in Postgres.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("sql geocode cache: db is nil")
	}

	keys := uniqueKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("sql geocode cache: query geocode_cache: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(keys))
	for rows.Next() {
		var addr string
		var c domain.Coordinates
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("sql geocode cache: scan row: %w", err)
		}
		out[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql geocode cache: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.sql.PutMany")(&err)

	if s.DB == nil {
		return errors.New("sql geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql geocode cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`)
	if err != nil {
		return fmt.Errorf("sql geocode cache: prepare: %w", err)
	}
	defer stmt.Close()

	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("sql geocode cache: empty address key")
		}
		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("sql geocode cache: upsert address=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql geocode cache: commit: %w", err)
	}

	return nil
}
