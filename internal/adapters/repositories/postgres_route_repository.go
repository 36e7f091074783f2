package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"

	"github.com/google/uuid"
)

var _ ports.RouteRepository = (*PostgresRouteRepository)(nil)

var (
	ErrNoTruckAvailable  = errors.New("no truck available")
	ErrNoDriverAvailable = errors.New("no driver available")
)

// Postgres-backed implementation of the RouteRepository port.
//
// Every truck segment is stored as a routes row sharing the plan_id of its
// route. Saving a segment takes one truck and one driver out of the pool;
// deleting it puts them back.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

// SaveRoute stores every segment of route in one transaction and fills in
// the generated ids and the assigned truck and driver.
func (r *PostgresRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "routes.SaveRoute")(&err)

	if r.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}
	if route == nil || len(route.Trucks) == 0 {
		return errors.New("save route: route has no truck segments")
	}
	if route.Date == "" {
		return errors.New("save route: route date is empty")
	}

	planID := route.ID
	if planID == "" {
		planID = uuid.NewString()
	} else if _, err := uuid.Parse(planID); err != nil {
		return fmt.Errorf("save route: plan id %q: %w", planID, err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	segments := make([]domain.TruckSegment, len(route.Trucks))
	copy(segments, route.Trucks)

	for i := range segments {
		seg := &segments[i]

		truckID, err := claim(ctx, tx, "trucks")
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("save route: segment %d: %w", i+1, ErrNoTruckAvailable)
		}
		if err != nil {
			return fmt.Errorf("save route: claim truck: %w", err)
		}

		driverID, err := claim(ctx, tx, "drivers")
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("save route: segment %d: %w", i+1, ErrNoDriverAvailable)
		}
		if err != nil {
			return fmt.Errorf("save route: claim driver: %w", err)
		}

		routeID := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO routes (id, plan_id, agent_id, truck_id, driver_id, truck_num, route_date, optimize_by, truck_seconds, truck_meters)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7::date, $8, $9, $10);
		`, routeID, planID, route.DepotID, truckID, driverID, i+1, route.Date, string(route.OptimizeBy), seg.TruckSeconds, seg.TruckMeters); err != nil {
			return fmt.Errorf("save route: insert route row: %w", err)
		}

		for _, s := range seg.Stops {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO deliveries (order_id, route_id, sequence_num)
			VALUES ($1, $2::uuid, $3);
			`, s.StopID, routeID, s.SequenceNum); err != nil {
				return fmt.Errorf("save route: insert delivery %s: %w", s.StopID, err)
			}
		}

		seg.RouteID = routeID
		seg.TruckID = truckID
		seg.DriverID = driverID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route: commit tx: %w", err)
	}

	route.ID = planID
	route.Trucks = segments
	return nil
}

// claim marks the lowest available id in table (trucks or drivers) as taken.
func claim(ctx context.Context, tx *sql.Tx, table string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`
	UPDATE %[1]s SET available = FALSE
	WHERE id = (
		SELECT id FROM %[1]s
		WHERE available
		ORDER BY id
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING id;
	`, table)).Scan(&id)
	return id, err
}

// LoadRoutes rebuilds the routes saved for date, one per plan, in plan order.
func (r *PostgresRouteRepository) LoadRoutes(ctx context.Context, date string) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "routes.LoadRoutes")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	stops, err := r.loadDeliveries(ctx, date)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT r.id::text, r.plan_id::text, r.truck_id, r.driver_id, r.optimize_by,
		r.truck_seconds, r.truck_meters,
		a.id, a.address_1, a.address_2, a.city, a.state, a.zip
	FROM routes r
	JOIN agents a ON a.id = r.agent_id
	WHERE r.route_date = $1::date
	ORDER BY r.plan_id, r.truck_num;
	`, date)
	if err != nil {
		return nil, fmt.Errorf("load routes: query routes table: %w", err)
	}
	defer rows.Close()

	var (
		out  []*domain.Route
		cur  *domain.Route
		plan string
	)
	for rows.Next() {
		var (
			seg     domain.TruckSegment
			planID  string
			by      string
			depotID string
			addr    domain.Address
		)
		if err := rows.Scan(
			&seg.RouteID, &planID, &seg.TruckID, &seg.DriverID, &by,
			&seg.TruckSeconds, &seg.TruckMeters,
			&depotID, &addr.Line1, &addr.Line2, &addr.City, &addr.State, &addr.Zip,
		); err != nil {
			return nil, fmt.Errorf("load routes: scan row: %w", err)
		}

		if cur == nil || planID != plan {
			metric, err := domain.ParseMetric(by)
			if err != nil {
				return nil, fmt.Errorf("load routes: route %s: %w", seg.RouteID, err)
			}
			cur = domain.NewRoute(depotID, addr.Full(), metric)
			cur.ID = planID
			cur.Date = date
			cur.IsValid = true
			cur.Visit(depotID)
			out = append(out, cur)
			plan = planID
		}

		seg.Stops = stops[seg.RouteID]
		for _, s := range seg.Stops {
			cur.Visit(s.StopID)
		}
		cur.Visit(depotID)

		cur.Trucks = append(cur.Trucks, seg)
		cur.TotalSeconds += seg.TruckSeconds
		cur.TotalMeters += seg.TruckMeters
		cur.TotalOptimized += cur.OptimizeBy.Pick(seg.TruckSeconds, seg.TruckMeters)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load routes: row iteration: %w", err)
	}

	for _, route := range out {
		route.SetTotals()
	}
	return out, nil
}

func (r *PostgresRouteRepository) loadDeliveries(ctx context.Context, date string) (map[string][]domain.RouteStop, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT d.route_id::text, d.order_id, d.sequence_num,
		o.address_1, o.address_2, o.city, o.state, o.zip
	FROM deliveries d
	JOIN routes r ON r.id = d.route_id
	JOIN orders o ON o.id = d.order_id
	WHERE r.route_date = $1::date
	ORDER BY d.route_id, d.sequence_num;
	`, date)
	if err != nil {
		return nil, fmt.Errorf("load routes: query deliveries table: %w", err)
	}
	defer rows.Close()

	out := map[string][]domain.RouteStop{}
	for rows.Next() {
		var (
			routeID string
			s       domain.RouteStop
			addr    domain.Address
		)
		if err := rows.Scan(&routeID, &s.StopID, &s.SequenceNum, &addr.Line1, &addr.Line2, &addr.City, &addr.State, &addr.Zip); err != nil {
			return nil, fmt.Errorf("load routes: scan delivery: %w", err)
		}
		s.Address = addr.Full()
		out[routeID] = append(out[routeID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load routes: delivery iteration: %w", err)
	}
	return out, nil
}

// DeleteRoutes removes the truck segments with the given route ids, returns
// their truck and driver to the pool and reports how many rows were removed.
func (r *PostgresRouteRepository) DeleteRoutes(ctx context.Context, ids []string) (_ int, err error) {
	defer obs.Time(ctx, "routes.DeleteRoutes")(&err)

	if r.DB == nil {
		return 0, errors.New("postgres route repository: DB is nil")
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return 0, fmt.Errorf("delete routes: route id %q: %w", id, err)
		}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted := 0
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
		UPDATE trucks SET available = TRUE
		WHERE id = (SELECT truck_id FROM routes WHERE id = $1::uuid);
		`, id); err != nil {
			return 0, fmt.Errorf("delete routes: release truck for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `
		UPDATE drivers SET available = TRUE
		WHERE id = (SELECT driver_id FROM routes WHERE id = $1::uuid);
		`, id); err != nil {
			return 0, fmt.Errorf("delete routes: release driver for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM deliveries WHERE route_id = $1::uuid;`, id); err != nil {
			return 0, fmt.Errorf("delete routes: delete deliveries for %s: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM routes WHERE id = $1::uuid;`, id)
		if err != nil {
			return 0, fmt.Errorf("delete routes: delete route %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("delete routes: rows affected: %w", err)
		}
		deleted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete routes: commit tx: %w", err)
	}

	return deleted, nil
}
