package aco

import "route-planner-service/internal/domain"

// Colony runs a population of ants in lockstep rounds over one graph with a
// fixed number of trucks.
type Colony struct {
	graph  *Graph
	trucks int
	params Params
	tau0   float64
	rng    Rand
	ants   []*Ant
}

func NewColony(g *Graph, trucks int, params Params, tau0 float64, rng Rand) *Colony {
	ants := make([]*Ant, params.Ants)
	for i := range ants {
		ants[i] = newAnt(g, params.OptimizeBy)
	}
	return &Colony{graph: g, trucks: trucks, params: params, tau0: tau0, rng: rng, ants: ants}
}

// Run steps the ants until all are done and returns the best valid route,
// or nil when no ant produced one.
func (c *Colony) Run() *domain.Route {
	for c.round() {
	}

	var best *domain.Route
	for _, a := range c.ants {
		r := a.Route()
		if !r.Validate(c.params.Capacity, c.params.TimeLimit) {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		best = domain.ReturnBest(best, r)
	}
	return best
}

// round moves every active ant once, then applies the local update for each
// move in ant order. It reports whether any ant is still active.
func (c *Colony) round() bool {
	moved := make([]bool, len(c.ants))
	active := false
	for i, a := range c.ants {
		if a.done {
			continue
		}
		moved[i] = a.step(c.graph, c.trucks, c.params, c.rng)
		if !a.done {
			active = true
		}
	}

	for i, a := range c.ants {
		if moved[i] {
			c.graph.LocalUpdate(a.lastStopID, a.current.ID, c.params.P, c.params.Beta, c.tau0)
		}
	}
	return active
}

