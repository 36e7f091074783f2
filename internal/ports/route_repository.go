package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Receives every accepted route.
type RouteSink interface {
	SaveRoute(ctx context.Context, route *domain.Route) error
}

// Port: stored routes that can be listed back and removed.
type RouteRepository interface {
	RouteSink
	// Return the routes saved for date, truck segments and stops included.
	LoadRoutes(ctx context.Context, date string) ([]*domain.Route, error)
	// Remove the routes with the given ids and everything attached to them.
	DeleteRoutes(ctx context.Context, ids []string) (int, error)
}
