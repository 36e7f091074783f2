package aco

import "math/rand"

// Rand is the only source of randomness used by the search.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
