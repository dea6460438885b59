// Package stream pre-samples the fixed matrix of uniform draws that make
// a DESPOT scenario's rollout deterministic across bound calls: every
// particle carrying scenario index s replays streams[s][d] at depth d,
// never a live RNG (spec.md §3, original_source
// ISDESPOT/.../util/random.h).
package stream

import "math/rand"

// Streams is an N x D table of uniform [0,1) draws: N scenarios, D =
// search depth. It is read-only after construction.
type Streams struct {
	entries [][]float64
	depth   int
}

// New allocates and fills a Streams table with n scenarios and the given
// depth, drawing from a freshly seeded rand.Rand so successive calls
// (e.g. one per tick) are independent. Use NewFromRand for a
// caller-controlled (and reproducible) seed.
func New(n, depth int) *Streams {
	return NewFromRand(n, depth, rand.New(rand.NewSource(rand.Int63())))
}

// NewFromRand fills a Streams table using the given source, so callers
// that need reproducibility (tests, S3 determinism checks) can pass a
// seeded *rand.Rand.
func NewFromRand(n, depth int, src *rand.Rand) *Streams {
	entries := make([][]float64, n)
	for i := range entries {
		row := make([]float64, depth)
		for d := range row {
			row[d] = src.Float64()
		}
		entries[i] = row
	}
	return &Streams{entries: entries, depth: depth}
}

// NumScenarios returns N, the first dimension of the table.
func (s *Streams) NumScenarios() int {
	return len(s.entries)
}

// Depth returns D, the search depth the table was built for.
func (s *Streams) Depth() int {
	return s.depth
}

// Entry returns the uniform draw for the given scenario at the given
// depth. It panics if depth is out of range -- a depth past the search
// bound is an internal invariant violation (spec.md §7), never a
// recoverable condition.
func (s *Streams) Entry(scenario, depth int) float64 {
	return s.entries[scenario][depth]
}
