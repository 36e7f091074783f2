package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Port: a boundary for loading the stops of one planning request.
type StopRepository interface {
	// Return the depot of the agent and the orders due on date.
	ListStops(ctx context.Context, agent string, date string) (*domain.StopSet, error)
}
