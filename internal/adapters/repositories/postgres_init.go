package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var schemaStatements = []string{
	`
	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		address_1 TEXT NOT NULL,
		address_2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL REFERENCES agents(id),
		address_1 TEXT NOT NULL,
		address_2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL,
		expected_date DATE NOT NULL,
		status_id INTEGER NOT NULL DEFAULT 1
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_orders_agent_date
	ON orders(agent_id, expected_date);
	`,
	`
	CREATE TABLE IF NOT EXISTS trucks (
		id TEXT PRIMARY KEY,
		available BOOLEAN NOT NULL DEFAULT TRUE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		available BOOLEAN NOT NULL DEFAULT TRUE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY,
		plan_id UUID NOT NULL,
		agent_id TEXT NOT NULL REFERENCES agents(id),
		truck_id TEXT NOT NULL REFERENCES trucks(id),
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		truck_num INTEGER NOT NULL,
		route_date DATE NOT NULL,
		optimize_by TEXT NOT NULL,
		truck_seconds INTEGER NOT NULL,
		truck_meters INTEGER NOT NULL
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_routes_date
	ON routes(route_date, plan_id, truck_num);
	`,
	`
	CREATE TABLE IF NOT EXISTS deliveries (
		order_id TEXT NOT NULL REFERENCES orders(id),
		route_id UUID NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		sequence_num INTEGER NOT NULL,
		status INTEGER NOT NULL DEFAULT 2,
		PRIMARY KEY (route_id, order_id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
	ON distance_cache(destination, origin);
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`,
}

// InitSchema creates every table the planner reads and writes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type AddressSeed struct {
	Address1 string `json:"address_1"`
	Address2 string `json:"address_2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

type AgentSeed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	AddressSeed
}

type OrderSeed struct {
	ID           string `json:"id"`
	AgentID      string `json:"agent_id"`
	ExpectedDate string `json:"expected_date"`
	AddressSeed
}

// Seed is the layout of the JSON seed file.
type Seed struct {
	Agents  []AgentSeed `json:"agents"`
	Orders  []OrderSeed `json:"orders"`
	Trucks  []string    `json:"trucks"`
	Drivers []string    `json:"drivers"`
}

func (s *Seed) validate() error {
	for i, a := range s.Agents {
		if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("agent at index %d: id and name are required", i+1)
		}
	}
	for i, o := range s.Orders {
		if strings.TrimSpace(o.ID) == "" || strings.TrimSpace(o.AgentID) == "" {
			return fmt.Errorf("order at index %d: id and agent_id are required", i+1)
		}
		if strings.TrimSpace(o.ExpectedDate) == "" {
			return fmt.Errorf("order %s: expected_date is required", o.ID)
		}
		if strings.TrimSpace(o.Address1) == "" {
			return fmt.Errorf("order %s: address_1 cannot be empty", o.ID)
		}
	}
	return nil
}

// SeedFromJSON loads agents, orders, trucks and drivers from a JSON file,
// replacing rows with the same ids.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}
	if err := seed.validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range seed.Agents {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO agents (id, name, address_1, address_2, city, state, zip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			address_1 = EXCLUDED.address_1,
			address_2 = EXCLUDED.address_2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip;
		`, a.ID, a.Name, a.Address1, a.Address2, a.City, a.State, a.Zip); err != nil {
			return fmt.Errorf("seed: insert agent id=%s: %w", a.ID, err)
		}
	}

	for _, o := range seed.Orders {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, agent_id, address_1, address_2, city, state, zip, expected_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date)
		ON CONFLICT (id) DO UPDATE
		SET agent_id = EXCLUDED.agent_id,
			address_1 = EXCLUDED.address_1,
			address_2 = EXCLUDED.address_2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			expected_date = EXCLUDED.expected_date;
		`, o.ID, o.AgentID, o.Address1, o.Address2, o.City, o.State, o.Zip, o.ExpectedDate); err != nil {
			return fmt.Errorf("seed: insert order id=%s: %w", o.ID, err)
		}
	}

	for _, id := range seed.Trucks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO trucks (id) VALUES ($1) ON CONFLICT (id) DO NOTHING;`, id); err != nil {
			return fmt.Errorf("seed: insert truck id=%s: %w", id, err)
		}
	}
	for _, id := range seed.Drivers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO drivers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING;`, id); err != nil {
			return fmt.Errorf("seed: insert driver id=%s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
