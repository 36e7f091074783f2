package aco

import (
	"context"
	"fmt"
	"route-planner-service/internal/domain"
)

// IterationStats describes one finished optimizer iteration.
type IterationStats struct {
	Iteration     int
	ActiveTrucks  int
	BestOptimized int
	BestValid     bool
	DistanceFound bool
	TrucksFound   bool
	TrucksReduced bool
}

// Result is the outcome of a run. Route is always set, even when err is ErrNoRoute.
type Result struct {
	Route            *domain.Route
	ActiveTrucks     int
	Iterations       int
	InitialPheromone float64
	Cancelled        bool
}

// Optimizer owns the graph for the length of a run and mutates its
// pheromone state between iterations.
type Optimizer struct {
	graph  *Graph
	params Params
	rng    Rand

	// OnIteration, when set, is called after every iteration.
	OnIteration func(IterationStats)
}

func NewOptimizer(g *Graph, params Params, rng Rand) (*Optimizer, error) {
	if params.InitialOrder == "" {
		params.InitialOrder = OrderDiscovery
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("new optimizer: %w", err)
	}
	if rng == nil {
		return nil, &ConfigError{Field: "rng", Reason: "random source is required"}
	}
	if g.Len() > 0 {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("new optimizer: %w", err)
		}
	}
	return &Optimizer{graph: g, params: params, rng: rng}, nil
}

// Run searches for the cheapest valid route. It stops early when ctx is done
// and returns the best route found so far with Cancelled set.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	g := o.graph
	if g.Depot() == nil || g.Len() < 2 {
		return nil, ErrNoOrders
	}

	g.SetCloseness(o.params.OptimizeBy)
	best := o.initialSolution()
	tau0 := g.InitializePheromones(o.params.Beta, len(best.Sequence))

	res := &Result{ActiveTrucks: o.params.TruckCount, InitialPheromone: tau0}
	for i := 0; i < o.params.Limit; i++ {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		distance := NewColony(g, res.ActiveTrucks, o.params, tau0, o.rng).Run()
		var trucks *domain.Route
		if res.ActiveTrucks > 1 {
			trucks = NewColony(g, res.ActiveTrucks-1, o.params, tau0, o.rng).Run()
		}

		winner := selectBest(best, distance, trucks)
		reduced := trucks != nil && winner == trucks
		if reduced {
			res.ActiveTrucks--
		}
		best = winner
		o.reinforce(best.Sequence)
		res.Iterations++

		if o.OnIteration != nil {
			o.OnIteration(IterationStats{
				Iteration:     i + 1,
				ActiveTrucks:  res.ActiveTrucks,
				BestOptimized: best.TotalOptimized,
				BestValid:     best.IsValid,
				DistanceFound: distance != nil,
				TrucksFound:   trucks != nil,
				TrucksReduced: reduced,
			})
		}
	}

	res.Route = best
	if !best.IsValid {
		return res, ErrNoRoute
	}
	return res, nil
}

// selectBest picks the next best route. An invalid best is only kept when no
// colony produced anything; a valid one loses only to a strictly cheaper route.
func selectBest(best, distance, trucks *domain.Route) *domain.Route {
	if !best.IsValid {
		switch {
		case trucks == nil && distance == nil:
			return best
		case trucks == nil:
			return distance
		case distance == nil:
			return trucks
		}
		return domain.ReturnBest(trucks, distance)
	}

	switch {
	case trucks == nil && distance == nil:
		return best
	case trucks == nil:
		return domain.ReturnBest(distance, best)
	case distance == nil:
		return domain.ReturnBest(trucks, best)
	}
	return domain.ReturnBest(domain.ReturnBest(trucks, distance), best)
}

// reinforce applies the global update along consecutive pairs of the sequence.
func (o *Optimizer) reinforce(sequence []string) {
	for i := 1; i < len(sequence); i++ {
		from, to := sequence[i-1], sequence[i]
		if from == to {
			continue
		}
		o.graph.GlobalUpdate(from, to, o.params.P, o.params.Beta, len(sequence))
	}
}
