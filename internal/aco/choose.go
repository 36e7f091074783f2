package aco

type candidate struct {
	stop  *Stop
	value float64
}

// ChooseNext picks the next stop to visit from current, considering only
// destinations marked true in availability. It returns nil when none remain.
//
// With probability q the most attractive destination wins (first one on a tie).
// Otherwise a destination is sampled in proportion to its attractiveness.
func ChooseNext(g *Graph, availability map[string]bool, current *Stop, q float64, rng Rand) *Stop {
	edges := current.Edges()
	candidates := make([]candidate, 0, len(edges))
	for _, e := range edges {
		if !availability[e.To] {
			continue
		}
		s, ok := g.Stop(e.To)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{stop: s, value: e.Attractiveness})
	}
	if len(candidates) == 0 {
		return nil
	}

	if rng.Float64() < q {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.value > best.value {
				best = c
			}
		}
		return best.stop
	}

	sum := 0.0
	for _, c := range candidates {
		sum += c.value
	}

	// A zero sum keeps the raw values as weights.
	cumulative := make([]float64, len(candidates))
	running := 0.0
	for i, c := range candidates {
		w := c.value
		if sum != 0 {
			w /= sum
		}
		running += w
		cumulative[i] = running
	}

	r := rng.Float64() * running
	for i, cum := range cumulative {
		if r <= cum {
			return candidates[i].stop
		}
	}
	return candidates[len(candidates)-1].stop
}
