package aco

import (
	"route-planner-service/internal/domain"
	"sort"
)

// initialSolution walks the graph from the depot, always taking the first
// available destination in the walk order, and returns the resulting route.
// The depot closes for new trucks after TruckCount visits. The route may be
// invalid.
func (o *Optimizer) initialSolution() *domain.Route {
	g := o.graph
	g.ResetAvailability()

	depot := g.Depot()
	route := domain.NewRoute(depot.ID, depot.Address, o.params.OptimizeBy)
	order := o.walkOrder()

	cur := depot
	visits := 0
	seconds, meters := 0, 0
	for {
		route.Visit(cur.ID)
		if cur.IsDepot {
			visits++
			if visits == o.params.TruckCount {
				cur.Available = false
			}
			route.CloseSegment(seconds, meters)
			seconds, meters = 0, 0
		} else {
			route.AddStop(cur.ID, cur.Address)
			cur.Available = false
		}

		var next *Stop
		for _, id := range order[cur.ID] {
			if s, _ := g.Stop(id); s.Available {
				next = s
				break
			}
		}
		if next == nil {
			if cur.IsDepot {
				break
			}
			next = depot
		}

		sec, m := g.Travel(cur.ID, next.ID)
		seconds += sec
		meters += m
		cur = next
	}

	route.Validate(o.params.Capacity, o.params.TimeLimit)
	return route
}

// walkOrder lists, per stop, the destinations the greedy walk tries in turn.
func (o *Optimizer) walkOrder() map[string][]string {
	order := make(map[string][]string, o.graph.Len())
	for _, s := range o.graph.Stops() {
		edges := append([]Edge(nil), s.Edges()...)
		if o.params.InitialOrder == OrderNearest {
			sort.SliceStable(edges, func(i, j int) bool {
				return edges[i].Closeness > edges[j].Closeness
			})
		}
		ids := make([]string, len(edges))
		for i, e := range edges {
			ids[i] = e.To
		}
		order[s.ID] = ids
	}
	return order
}
