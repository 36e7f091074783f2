package cache

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// passthrough lets array arguments reach the mock unchanged, the way the pgx
// driver accepts them.
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestSQLDistanceCacheGetMany(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewSQLDistanceCache(db)

	mock.ExpectQuery(`SELECT destination, distance_meters, duration_seconds\s+FROM distance_cache`).
		WithArgs("HUB", []string{"A", "B"}).
		WillReturnRows(sqlmock.NewRows([]string{"destination", "distance_meters", "duration_seconds"}).
			AddRow("A", 1000, 300))

	got, err := c.GetMany(context.Background(), "HUB", []string{"A", " B", "A", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got["A"] != (ports.DistanceResult{DistanceMeters: 1000, DurationSeconds: 300}) {
		t.Fatalf("A = %+v", got["A"])
	}
}

func TestSQLDistanceCacheGetManyNoKeysSkipsQuery(t *testing.T) {
	db, _ := newMockDB(t)
	c := NewSQLDistanceCache(db)

	got, err := c.GetMany(context.Background(), "HUB", []string{" ", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestSQLDistanceCachePutMany(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewSQLDistanceCache(db)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO distance_cache`)
	prep.ExpectExec().WithArgs("HUB", "A", 1000, 300).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := c.PutMany(context.Background(), "HUB", map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1000, DurationSeconds: 300},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLDistanceCacheNilDB(t *testing.T) {
	c := NewSQLDistanceCache(nil)
	if _, err := c.GetMany(context.Background(), "HUB", []string{"A"}); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestSQLGeocodeCacheRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewSQLGeocodeCache(db)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO geocode_cache`)
	prep.ExpectExec().WithArgs("2 Oak St", -89.65, 39.78).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT address, lon, lat\s+FROM geocode_cache`).
		WithArgs([]string{"2 Oak St"}).
		WillReturnRows(sqlmock.NewRows([]string{"address", "lon", "lat"}).AddRow("2 Oak St", -89.65, 39.78))

	ctx := context.Background()
	if err := c.PutMany(ctx, map[string]domain.Coordinates{"2 Oak St": {Lon: -89.65, Lat: 39.78}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.GetMany(ctx, []string{"2 Oak St"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["2 Oak St"] != (domain.Coordinates{Lon: -89.65, Lat: 39.78}) {
		t.Fatalf("coords = %+v", got["2 Oak St"])
	}
}
