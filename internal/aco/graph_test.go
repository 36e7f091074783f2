package aco

import (
	"errors"
	"math"
	"route-planner-service/internal/domain"
	"testing"
)

// starGraph builds a depot plus stops where every depot leg costs depotSec
// seconds and every stop to stop leg costs stopSec. Meters are a third of seconds.
func starGraph(t *testing.T, stops []string, depotSec, stopSec int) *Graph {
	t.Helper()

	g := NewGraph()
	for _, id := range stops {
		if err := g.AddStop(id, id+" street", false); err != nil {
			t.Fatalf("add stop %s: %v", id, err)
		}
	}
	if err := g.AddStop("depot", "1 depot way", true); err != nil {
		t.Fatalf("add depot: %v", err)
	}

	for _, from := range g.Stops() {
		for _, to := range g.Stops() {
			if from == to {
				continue
			}
			sec := stopSec
			if from.IsDepot || to.IsDepot {
				sec = depotSec
			}
			if err := g.SetTravel(from.ID, to.ID, sec, sec/3); err != nil {
				t.Fatalf("set travel %s -> %s: %v", from.ID, to.ID, err)
			}
		}
	}
	return g
}

func TestGraphAddStopRejectsDuplicatesAndSecondDepot(t *testing.T) {
	g := NewGraph()
	if err := g.AddStop("a", "", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cfg *ConfigError
	if err := g.AddStop("a", "", false); !errors.As(err, &cfg) {
		t.Fatalf("duplicate id: err = %v, want *ConfigError", err)
	}
	if err := g.AddStop("d1", "", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddStop("d2", "", true); !errors.As(err, &cfg) {
		t.Fatalf("second depot: err = %v, want *ConfigError", err)
	}
}

func TestGraphSetTravelRejectsSelfEdge(t *testing.T) {
	g := NewGraph()
	_ = g.AddStop("a", "", false)

	var cfg *ConfigError
	if err := g.SetTravel("a", "a", 1, 1); !errors.As(err, &cfg) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if len(g.Stops()[0].Edges()) != 0 {
		t.Fatalf("self edge was recorded")
	}
}

func TestGraphValidateMissingMetric(t *testing.T) {
	g := NewGraph()
	_ = g.AddStop("a", "", false)
	_ = g.AddStop("depot", "", true)
	_ = g.SetTravel("a", "depot", 10, 10)

	var cfg *ConfigError
	err := g.Validate()
	if !errors.As(err, &cfg) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if cfg.Field != "travel" {
		t.Fatalf("field = %q, want travel", cfg.Field)
	}

	_ = g.SetTravel("depot", "a", 12, 12)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error after filling pair: %v", err)
	}
}

func TestGraphEdgesKeepRecordingOrder(t *testing.T) {
	g := starGraph(t, []string{"c", "a", "b"}, 500, 100)

	s, _ := g.Stop("a")
	var got []string
	for _, e := range s.Edges() {
		got = append(got, e.To)
	}
	want := []string{"c", "b", "depot"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("edge order = %v, want %v", got, want)
		}
	}
}

func TestGraphSetCloseness(t *testing.T) {
	g := NewGraph()
	_ = g.AddStop("a", "", false)
	_ = g.AddStop("depot", "", true)
	_ = g.SetTravel("a", "depot", 0, 250)
	_ = g.SetTravel("depot", "a", 400, 0)

	g.SetCloseness(domain.MetricSeconds)
	a, _ := g.Stop("a")
	if e, _ := a.Edge("depot"); e.Closeness != 1 {
		t.Fatalf("zero metric closeness = %v, want 1", e.Closeness)
	}
	d := g.Depot()
	if e, _ := d.Edge("a"); e.Closeness != 1.0/400 {
		t.Fatalf("closeness = %v, want %v", e.Closeness, 1.0/400)
	}

	g.SetCloseness(domain.MetricMeters)
	if e, _ := a.Edge("depot"); e.Closeness != 1.0/250 {
		t.Fatalf("meters closeness = %v, want %v", e.Closeness, 1.0/250)
	}
}

func TestGraphInitializePheromones(t *testing.T) {
	g := starGraph(t, []string{"a", "b", "c"}, 400, 100)
	g.SetCloseness(domain.MetricSeconds)

	tau0 := g.InitializePheromones(2, 5)
	if want := 1.0 / (4 * 5); tau0 != want {
		t.Fatalf("tau0 = %v, want %v", tau0, want)
	}

	for _, s := range g.Stops() {
		if _, ok := s.Edge(s.ID); ok {
			t.Fatalf("stop %s has an edge to itself", s.ID)
		}
		for _, e := range s.Edges() {
			if e.Pheromone != tau0 {
				t.Fatalf("pheromone %s -> %s = %v, want %v", s.ID, e.To, e.Pheromone, tau0)
			}
			if want := tau0 * math.Pow(e.Closeness, 2); e.Attractiveness != want {
				t.Fatalf("attractiveness %s -> %s = %v, want %v", s.ID, e.To, e.Attractiveness, want)
			}
		}
	}
}

func TestGraphLocalAndGlobalUpdate(t *testing.T) {
	g := starGraph(t, []string{"a", "b"}, 400, 100)
	g.SetCloseness(domain.MetricSeconds)
	tau0 := g.InitializePheromones(1, 4)

	g.GlobalUpdate("a", "b", 0.5, 1, 4)
	a, _ := g.Stop("a")
	e, _ := a.Edge("b")
	if want := 0.5*tau0 + 0.5/4; e.Pheromone != want {
		t.Fatalf("global pheromone = %v, want %v", e.Pheromone, want)
	}
	if want := e.Pheromone * e.Closeness; e.Attractiveness != want {
		t.Fatalf("attractiveness = %v, want %v", e.Attractiveness, want)
	}

	before := e.Pheromone
	g.LocalUpdate("a", "b", 0.5, 1, tau0)
	e, _ = a.Edge("b")
	if want := 0.5*before + 0.5*tau0; e.Pheromone != want {
		t.Fatalf("local pheromone = %v, want %v", e.Pheromone, want)
	}

	rev, _ := g.Stop("b")
	if e, _ := rev.Edge("a"); e.Pheromone != tau0 {
		t.Fatalf("reverse edge changed: %v, want %v", e.Pheromone, tau0)
	}
}

func TestGraphLocalUpdateSkipsZero(t *testing.T) {
	g := starGraph(t, []string{"a", "b"}, 400, 100)
	g.SetCloseness(domain.MetricSeconds)
	tau0 := g.InitializePheromones(1, 4)

	g.LocalUpdate("a", "b", 1, 1, 0)

	a, _ := g.Stop("a")
	if e, _ := a.Edge("b"); e.Pheromone != tau0 {
		t.Fatalf("pheromone = %v, want unchanged %v", e.Pheromone, tau0)
	}
}
