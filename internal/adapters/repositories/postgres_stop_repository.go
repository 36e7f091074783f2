package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
)

var _ ports.StopRepository = (*PostgresStopRepository)(nil)

// ErrUnknownAgent is returned when no agent has the requested name.
var ErrUnknownAgent = errors.New("unknown agent")

// Postgres-backed implementation of the StopRepository port.
type PostgresStopRepository struct{ DB *sql.DB }

func NewPostgresStopRepository(db *sql.DB) *PostgresStopRepository {
	return &PostgresStopRepository{DB: db}
}

// ListStops returns the agent's depot and its open orders expected on date.
// An agent without orders yields an empty Orders slice, not an error.
// Orders come newest first by the number in their id, so "O10" sorts ahead of "O9".
func (r *PostgresStopRepository) ListStops(ctx context.Context, agent, date string) (_ *domain.StopSet, err error) {
	defer obs.Time(ctx, "stops.ListStops")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres stop repository: DB is nil")
	}

	depot := domain.Stop{IsDepot: true}
	err = r.DB.QueryRowContext(ctx, `
	SELECT id, address_1, address_2, city, state, zip
	FROM agents
	WHERE name = $1;
	`, agent).Scan(
		&depot.ID,
		&depot.Address.Line1,
		&depot.Address.Line2,
		&depot.Address.City,
		&depot.Address.State,
		&depot.Address.Zip,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list stops: agent %q: %w", agent, ErrUnknownAgent)
	}
	if err != nil {
		return nil, fmt.Errorf("list stops: query agents table: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, address_1, address_2, city, state, zip
	FROM orders
	WHERE agent_id = $1
		AND status_id = 1
		AND expected_date = $2::date
	ORDER BY NULLIF(regexp_replace(id, '\D', '', 'g'), '')::numeric DESC NULLS LAST, id DESC;
	`, depot.ID, date)
	if err != nil {
		return nil, fmt.Errorf("list stops: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Stop, 0, 32)
	for rows.Next() {
		var s domain.Stop
		if err := rows.Scan(&s.ID, &s.Address.Line1, &s.Address.Line2, &s.Address.City, &s.Address.State, &s.Address.Zip); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		orders = append(orders, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return &domain.StopSet{Agent: agent, Date: date, Depot: depot, Orders: orders}, nil
}
