package ports

import "context"

// Optional extension of DistanceProvider for providers that answer one origin
// against many destinations in a single call.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return results keyed by destination; destinations equal to origin are omitted.
	GetDistances(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
}
