package distance

import (
	"context"
	"fmt"
	"route-planner-service/internal/ports"
	"sync"
)

// MockPair is one directed fixture entry.
type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

// MockDistanceProvider serves fixed pairs and counts lookups. Unknown pairs are an error.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	mu    sync.Mutex
	calls int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

// Symmetric expands each pair into both directions.
func Symmetric(pairs []MockPair) []MockPair {
	out := make([]MockPair, 0, 2*len(pairs))
	for _, p := range pairs {
		out = append(out, p, MockPair{From: p.To, To: p.From, Meters: p.Meters, Seconds: p.Seconds})
	}
	return out
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.DistanceResult{}, err
	}

	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}

	return r, nil
}

// Calls is the number of GetDistance lookups served so far.
func (p *MockDistanceProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
