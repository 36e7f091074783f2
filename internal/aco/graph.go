package aco

import (
	"fmt"
	"math"
	"route-planner-service/internal/domain"
)

// Edge is the state kept for travelling from one stop to another.
type Edge struct {
	To             string
	Seconds        int
	Meters         int
	Closeness      float64
	Pheromone      float64
	Attractiveness float64
}

// Stop is a graph vertex. Edges are kept in the order they were recorded,
// and a stop never has an edge to itself.
type Stop struct {
	ID      string
	Address string
	IsDepot bool

	// Available is the visited marker used by the greedy walk only.
	Available bool

	edges []Edge
	index map[string]int
}

// Edges returns the outgoing edges in recording order. Callers must not modify them.
func (s *Stop) Edges() []Edge {
	return s.edges
}

// Edge looks up the outgoing edge to the given stop.
func (s *Stop) Edge(to string) (Edge, bool) {
	i, ok := s.index[to]
	if !ok {
		return Edge{}, false
	}
	return s.edges[i], true
}

func (s *Stop) edge(to string) *Edge {
	i, ok := s.index[to]
	if !ok {
		return nil
	}
	return &s.edges[i]
}

// Graph holds every stop of one planning request with its travel metrics
// and the pheromone state that evolves across iterations.
type Graph struct {
	stops []*Stop
	byID  map[string]*Stop
	depot *Stop
}

func NewGraph() *Graph {
	return &Graph{byID: make(map[string]*Stop)}
}

// AddStop registers a stop. Exactly one stop may be the depot.
func (g *Graph) AddStop(id, address string, isDepot bool) error {
	if id == "" {
		return &ConfigError{Field: "stop", Reason: "empty stop id"}
	}
	if _, ok := g.byID[id]; ok {
		return &ConfigError{Field: "stop", Reason: fmt.Sprintf("duplicate stop id %q", id)}
	}
	if isDepot && g.depot != nil {
		return &ConfigError{Field: "stop", Reason: fmt.Sprintf("second depot %q (already have %q)", id, g.depot.ID)}
	}

	s := &Stop{ID: id, Address: address, IsDepot: isDepot, Available: true, index: make(map[string]int)}
	g.stops = append(g.stops, s)
	g.byID[id] = s
	if isDepot {
		g.depot = s
	}
	return nil
}

// SetTravel records the travel metrics from one stop to another. Metrics may
// be asymmetric. Recording the same pair again overwrites it in place.
func (g *Graph) SetTravel(from, to string, seconds, meters int) error {
	if from == to {
		return &ConfigError{Field: "travel", Reason: fmt.Sprintf("self edge on %q", from)}
	}
	if seconds < 0 || meters < 0 {
		return &ConfigError{Field: "travel", Reason: fmt.Sprintf("negative metric %q -> %q", from, to)}
	}
	src, ok := g.byID[from]
	if !ok {
		return &ConfigError{Field: "travel", Reason: fmt.Sprintf("unknown stop %q", from)}
	}
	if _, ok := g.byID[to]; !ok {
		return &ConfigError{Field: "travel", Reason: fmt.Sprintf("unknown stop %q", to)}
	}

	if e := src.edge(to); e != nil {
		e.Seconds, e.Meters = seconds, meters
		return nil
	}
	src.index[to] = len(src.edges)
	src.edges = append(src.edges, Edge{To: to, Seconds: seconds, Meters: meters})
	return nil
}

// Validate fails when there is no depot or when any ordered pair of stops
// is missing travel metrics.
func (g *Graph) Validate() error {
	if g.depot == nil {
		return &ConfigError{Field: "stop", Reason: "graph has no depot"}
	}
	for _, from := range g.stops {
		for _, to := range g.stops {
			if from == to {
				continue
			}
			if _, ok := from.index[to.ID]; !ok {
				return &ConfigError{Field: "travel", Reason: fmt.Sprintf("missing metric %q -> %q", from.ID, to.ID)}
			}
		}
	}
	return nil
}

// Len is the number of stops including the depot.
func (g *Graph) Len() int { return len(g.stops) }

// Stops returns the stops in the order they were added.
func (g *Graph) Stops() []*Stop { return g.stops }

func (g *Graph) Stop(id string) (*Stop, bool) {
	s, ok := g.byID[id]
	return s, ok
}

func (g *Graph) Depot() *Stop { return g.depot }

// Travel returns the metrics between two stops, zero for a stop to itself.
func (g *Graph) Travel(from, to string) (seconds, meters int) {
	s, ok := g.byID[from]
	if !ok {
		return 0, 0
	}
	if e := s.edge(to); e != nil {
		return e.Seconds, e.Meters
	}
	return 0, 0
}

// Availability returns a fresh map marking every stop as available.
func (g *Graph) Availability() map[string]bool {
	m := make(map[string]bool, len(g.stops))
	for _, s := range g.stops {
		m[s.ID] = true
	}
	return m
}

// ResetAvailability marks every stop available for a new greedy walk.
func (g *Graph) ResetAvailability() {
	for _, s := range g.stops {
		s.Available = true
	}
}

// SetCloseness derives closeness from the chosen metric: 1/metric, or 1
// when the metric is zero.
func (g *Graph) SetCloseness(by domain.Metric) {
	for _, s := range g.stops {
		for i := range s.edges {
			e := &s.edges[i]
			v := by.Pick(e.Seconds, e.Meters)
			if v == 0 {
				e.Closeness = 1
			} else {
				e.Closeness = 1 / float64(v)
			}
		}
	}
}

// InitializePheromones sets every edge to 1/(stops*pathLength), recomputes
// attractiveness and returns that initial value.
func (g *Graph) InitializePheromones(beta float64, pathLength int) float64 {
	tau0 := 1 / (float64(len(g.stops)) * float64(pathLength))
	for _, s := range g.stops {
		for i := range s.edges {
			e := &s.edges[i]
			e.Pheromone = tau0
			e.Attractiveness = attractiveness(e, beta)
		}
	}
	return tau0
}

// LocalUpdate decays an edge toward the initial pheromone. A result of
// exactly zero leaves the edge untouched.
func (g *Graph) LocalUpdate(from, to string, p, beta, tau0 float64) {
	e := g.edge(from, to)
	if e == nil {
		return
	}
	v := (1-p)*e.Pheromone + p*tau0
	if v == 0 {
		return
	}
	e.Pheromone = v
	e.Attractiveness = attractiveness(e, beta)
}

// GlobalUpdate reinforces an edge of the winning sequence of the given length.
func (g *Graph) GlobalUpdate(from, to string, p, beta float64, length int) {
	e := g.edge(from, to)
	if e == nil || length <= 0 {
		return
	}
	e.Pheromone = (1-p)*e.Pheromone + p/float64(length)
	e.Attractiveness = attractiveness(e, beta)
}

func (g *Graph) edge(from, to string) *Edge {
	s, ok := g.byID[from]
	if !ok {
		return nil
	}
	return s.edge(to)
}

func attractiveness(e *Edge, beta float64) float64 {
	return e.Pheromone * math.Pow(e.Closeness, beta)
}
