package services

import (
	"context"
	"fmt"
	"route-planner-service/internal/aco"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/ports"
	"sync"
)

const fetchConcurrency = 5

type originResult struct {
	origin  string
	results map[string]ports.DistanceResult
	err     error
}

// BuildGraph loads every ordered pair of stops into a graph. Orders keep the
// repository order and the depot is added last. Stops sharing an address are
// zero apart and are fetched once.
func BuildGraph(
	ctx context.Context,
	set *domain.StopSet,
	provider ports.DistanceProvider,
	rec *metrics.Registry,
) (*aco.Graph, error) {
	stops := make([]domain.Stop, 0, len(set.Orders)+1)
	stops = append(stops, set.Orders...)
	depot := set.Depot
	depot.IsDepot = true
	stops = append(stops, depot)

	g := aco.NewGraph()
	addresses := make([]string, 0, len(stops))
	seen := make(map[string]bool, len(stops))
	for _, s := range stops {
		addr := s.Address.Full()
		if addr == "" {
			return nil, fmt.Errorf("build graph: stop %s has an empty address", s.ID)
		}
		if err := g.AddStop(s.ID, addr, s.IsDepot); err != nil {
			return nil, fmt.Errorf("build graph: %w", err)
		}
		if !seen[addr] {
			seen[addr] = true
			addresses = append(addresses, addr)
		}
	}

	travel, err := fetchAll(ctx, addresses, provider, rec)
	if err != nil {
		return nil, err
	}

	for _, from := range g.Stops() {
		for _, to := range g.Stops() {
			if from.ID == to.ID {
				continue
			}
			var r ports.DistanceResult
			if from.Address != to.Address {
				var ok bool
				r, ok = travel[from.Address+"|"+to.Address]
				if !ok {
					return nil, fmt.Errorf("build graph: missing distance from %q to %q", from.Address, to.Address)
				}
			}
			if err := g.SetTravel(from.ID, to.ID, r.DurationSeconds, r.DistanceMeters); err != nil {
				return nil, fmt.Errorf("build graph: %w", err)
			}
		}
	}

	return g, nil
}

// fetchAll returns "origin|destination" results for every ordered pair of
// distinct addresses, fetching one origin per goroutine.
func fetchAll(
	ctx context.Context,
	addresses []string,
	provider ports.DistanceProvider,
	rec *metrics.Registry,
) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(addresses)*len(addresses))
	if len(addresses) < 2 {
		return out, nil
	}

	mp, hasMatrix := provider.(ports.DistanceMatrixProvider)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, fetchConcurrency)
	resultsCh := make(chan originResult, len(addresses))
	var wg sync.WaitGroup

	for _, origin := range addresses {
		targets := make([]string, 0, len(addresses)-1)
		for _, t := range addresses {
			if t != origin {
				targets = append(targets, t)
			}
		}

		wg.Add(1)
		go func(orig string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			if hasMatrix {
				rec.RecordLookup("matrix")
				res, err := mp.GetDistances(ctx, orig, targets)
				if err != nil {
					resultsCh <- originResult{origin: orig, err: fmt.Errorf("build graph: get distances from %q: %w", orig, err)}
					cancel()
					return
				}
				resultsCh <- originResult{origin: orig, results: res}
				return
			}

			res := make(map[string]ports.DistanceResult, len(targets))
			for _, t := range targets {
				rec.RecordLookup("pair")
				r, err := provider.GetDistance(ctx, orig, t)
				if err != nil {
					resultsCh <- originResult{origin: orig, err: fmt.Errorf("build graph: get distance from %q to %q: %w", orig, t, err)}
					cancel()
					return
				}
				res[t] = r
			}
			resultsCh <- originResult{origin: orig, results: res}
		}(origin)
	}

	wg.Wait()
	close(resultsCh)

	var firstErr error
	for res := range resultsCh {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		for t, r := range res.results {
			out[res.origin+"|"+t] = r
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return out, nil
}
