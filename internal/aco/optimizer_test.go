package aco

import (
	"context"
	"errors"
	"reflect"
	"route-planner-service/internal/domain"
	"sort"
	"testing"
)

func e2eParams() Params {
	return Params{
		Q:          0.7,
		P:          0.5,
		Beta:       1.5,
		Limit:      10,
		Ants:       1,
		TruckCount: 2,
		Capacity:   10,
		TimeLimit:  21600,
		OptimizeBy: domain.MetricSeconds,
	}
}

func runE2E(t *testing.T, seed int64) *Result {
	t.Helper()

	// A single round trip over all five stops takes 7000 + 4*2000 + 7000 =
	// 22000s, over the limit. One truck that serves four stops, returns and
	// ends at the fifth takes 20000 + 7000 = 27000s in total.
	g := starGraph(t, []string{"s1", "s2", "s3", "s4", "s5"}, 7000, 2000)
	opt, err := NewOptimizer(g, e2eParams(), NewRand(seed))
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	res, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestOptimizerEndToEnd(t *testing.T) {
	res := runE2E(t, 42)
	r := res.Route

	if !r.IsValid {
		t.Fatalf("route is not valid")
	}
	if len(r.Trucks) != 2 || res.ActiveTrucks != 1 {
		t.Fatalf("segments = %d active trucks = %d, want 2 and 1", len(r.Trucks), res.ActiveTrucks)
	}
	if r.TotalSeconds != 27000 {
		t.Fatalf("total seconds = %d, want 27000", r.TotalSeconds)
	}

	var got []string
	for _, truck := range r.Trucks {
		for _, s := range truck.Stops {
			got = append(got, s.StopID)
		}
	}
	sort.Strings(got)
	if want := []string{"s1", "s2", "s3", "s4", "s5"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("stops = %v, want %v", got, want)
	}

	sum := 0
	for _, truck := range r.Trucks {
		sum += truck.TruckSeconds
	}
	if sum != r.TotalSeconds || r.TotalOptimized != r.TotalSeconds {
		t.Fatalf("totals: trucks=%d total=%d optimized=%d", sum, r.TotalSeconds, r.TotalOptimized)
	}
	if res.Iterations != 10 {
		t.Fatalf("iterations = %d, want 10", res.Iterations)
	}
}

func TestOptimizerDeterministicForSeed(t *testing.T) {
	a := runE2E(t, 99).Route
	b := runE2E(t, 99).Route

	if !reflect.DeepEqual(a.Sequence, b.Sequence) {
		t.Fatalf("sequence differs: %v vs %v", a.Sequence, b.Sequence)
	}
	if a.TotalOptimized != b.TotalOptimized {
		t.Fatalf("total differs: %d vs %d", a.TotalOptimized, b.TotalOptimized)
	}
}

func TestOptimizerNoOrders(t *testing.T) {
	g := NewGraph()
	_ = g.AddStop("depot", "", true)

	opt, err := NewOptimizer(g, e2eParams(), NewRand(1))
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	if _, err := opt.Run(context.Background()); !errors.Is(err, ErrNoOrders) {
		t.Fatalf("err = %v, want ErrNoOrders", err)
	}
}

func TestOptimizerNoRoute(t *testing.T) {
	// Every round trip is longer than the time limit.
	g := starGraph(t, []string{"a", "b"}, 20000, 100)
	params := e2eParams()
	params.TimeLimit = 30000

	opt, err := NewOptimizer(g, params, NewRand(1))
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	res, err := opt.Run(context.Background())
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("err = %v, want ErrNoRoute", err)
	}
	if res == nil || res.Route == nil || res.Route.IsValid {
		t.Fatalf("want the best invalid route alongside ErrNoRoute")
	}
}

func TestOptimizerCancelled(t *testing.T) {
	g := starGraph(t, []string{"a", "b", "c"}, 100, 100)
	params := e2eParams()
	params.TruckCount = 1

	opt, err := NewOptimizer(g, params, NewRand(1))
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := opt.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Cancelled || res.Iterations != 0 {
		t.Fatalf("cancelled = %v iterations = %d, want true 0", res.Cancelled, res.Iterations)
	}
	if res.Route.StopCount() != 3 {
		t.Fatalf("stop count = %d, want greedy route with 3", res.Route.StopCount())
	}
}

func TestOptimizerReducesTrucks(t *testing.T) {
	// Capacity 2 makes the single truck greedy route invalid; two trucks
	// are enough, so spare trucks are dropped whenever the smaller colony wins.
	params := e2eParams()
	params.TruckCount = 3
	params.Capacity = 2

	reductions := 0
	for seed := int64(1); seed <= 20; seed++ {
		g := starGraph(t, []string{"a", "b", "c"}, 1000, 100)
		opt, err := NewOptimizer(g, params, NewRand(seed))
		if err != nil {
			t.Fatalf("new optimizer: %v", err)
		}

		var seen []IterationStats
		opt.OnIteration = func(s IterationStats) { seen = append(seen, s) }

		res, err := opt.Run(context.Background())
		if err != nil {
			t.Fatalf("seed %d: run: %v", seed, err)
		}
		if len(seen) != params.Limit {
			t.Fatalf("observed %d iterations, want %d", len(seen), params.Limit)
		}

		prev := params.TruckCount
		for _, s := range seen {
			if s.ActiveTrucks < 1 || s.ActiveTrucks > prev {
				t.Fatalf("seed %d: active trucks went %d -> %d", seed, prev, s.ActiveTrucks)
			}
			if s.TrucksReduced {
				reductions++
				if s.ActiveTrucks != prev-1 {
					t.Fatalf("seed %d: reduced from %d to %d", seed, prev, s.ActiveTrucks)
				}
			}
			prev = s.ActiveTrucks
		}
		if res.ActiveTrucks != prev {
			t.Fatalf("result active trucks = %d, want %d", res.ActiveTrucks, prev)
		}
	}
	if reductions == 0 {
		t.Fatalf("no run reduced the truck count")
	}
}

func TestNewOptimizerRejectsBadParams(t *testing.T) {
	g := starGraph(t, []string{"a"}, 100, 100)

	cases := []struct {
		name  string
		mod   func(*Params)
		field string
	}{
		{"zero trucks", func(p *Params) { p.TruckCount = 0 }, "TruckCount"},
		{"negative capacity", func(p *Params) { p.Capacity = -1 }, "Capacity"},
		{"zero time limit", func(p *Params) { p.TimeLimit = 0 }, "TimeLimit"},
		{"q above one", func(p *Params) { p.Q = 1.2 }, "Q"},
		{"negative beta", func(p *Params) { p.Beta = -1 }, "Beta"},
		{"unknown metric", func(p *Params) { p.OptimizeBy = "hours" }, "OptimizeBy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := e2eParams()
			tc.mod(&p)

			_, err := NewOptimizer(g, p, NewRand(1))
			var cfg *ConfigError
			if !errors.As(err, &cfg) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if cfg.Field != tc.field {
				t.Fatalf("field = %q, want %q", cfg.Field, tc.field)
			}
		})
	}
}

func TestNewOptimizerRejectsMissingMetric(t *testing.T) {
	g := NewGraph()
	_ = g.AddStop("a", "", false)
	_ = g.AddStop("depot", "", true)
	_ = g.SetTravel("depot", "a", 10, 10)

	_, err := NewOptimizer(g, e2eParams(), NewRand(1))
	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestSelectBest(t *testing.T) {
	valid := func(total int) *domain.Route { return &domain.Route{TotalOptimized: total, IsValid: true} }
	invalid := &domain.Route{TotalOptimized: 1}

	d, k := valid(500), valid(500)
	if got := selectBest(invalid, d, k); got != d {
		t.Fatalf("tie between colonies should favor the distance route")
	}
	if got := selectBest(invalid, nil, nil); got != invalid {
		t.Fatalf("invalid best should stay when no colony found a route")
	}

	best := valid(400)
	if got := selectBest(best, valid(400), nil); got != best {
		t.Fatalf("valid best should win ties")
	}
	cheaper := valid(300)
	if got := selectBest(best, nil, cheaper); got != cheaper {
		t.Fatalf("strictly cheaper trucks route should win")
	}
}
