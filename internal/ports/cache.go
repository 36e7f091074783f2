package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Persistent travel metrics keyed by normalized origin and destination address.
type DistanceCache interface {
	// Return the cached results for the destinations that have one; misses are absent.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]DistanceResult) error
}

// Persistent geocoding results keyed by normalized address.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
