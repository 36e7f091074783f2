package aco

import "route-planner-service/internal/domain"

// Ant builds one candidate route. It reads the graph but never writes to it;
// pheromone updates for its moves are applied by the colony.
type Ant struct {
	current      *Stop
	lastStopID   string
	seconds      int
	meters       int
	depotVisits  int
	availability map[string]bool
	route        *domain.Route
	done         bool
}

func newAnt(g *Graph, by domain.Metric) *Ant {
	depot := g.Depot()
	return &Ant{
		current:      depot,
		availability: g.Availability(),
		route:        domain.NewRoute(depot.ID, depot.Address, by),
	}
}

// Route returns the route built so far.
func (a *Ant) Route() *domain.Route { return a.route }

func (a *Ant) Done() bool { return a.done }

// step makes one move for a colony limited to trucks trucks and reports
// whether the ant traversed an edge. After trucks+1 depot visits the depot is
// closed to this ant, so a last segment may end at a stop.
func (a *Ant) step(g *Graph, trucks int, params Params, rng Rand) bool {
	cur := a.current
	depot := g.Depot()

	a.route.Visit(cur.ID)
	if cur.IsDepot {
		a.depotVisits++
		if a.depotVisits == trucks+1 {
			a.availability[cur.ID] = false
		}
	} else {
		a.route.AddStop(cur.ID, cur.Address)
		a.availability[cur.ID] = false
	}

	next := ChooseNext(g, a.availability, cur, params.Q, rng)
	if next == nil {
		if cur.IsDepot || a.depotVisits >= trucks+1 {
			a.finish()
			return false
		}
		next = depot
	}

	if !cur.IsDepot && !next.IsDepot {
		toNext, _ := g.Travel(cur.ID, next.ID)
		back, _ := g.Travel(next.ID, depot.ID)
		if a.seconds+toNext+back > params.TimeLimit || a.route.OpenStops() >= params.Capacity {
			next = depot
		}
	}

	if cur.IsDepot {
		a.route.CloseSegment(a.seconds, a.meters)
		a.seconds, a.meters = 0, 0
	}

	sec, m := g.Travel(cur.ID, next.ID)
	a.seconds += sec
	a.meters += m
	a.lastStopID = cur.ID
	a.current = next
	return true
}

func (a *Ant) finish() {
	a.route.CloseSegment(a.seconds, a.meters)
	a.seconds, a.meters = 0, 0
	a.lastStopID = ""
	a.done = true
}
