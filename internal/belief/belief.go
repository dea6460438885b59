// Package belief implements the weighted particle representation of a
// POMDP belief and the sampling/re-partitioning machinery used to
// determinize it into scenarios (spec.md §3, §4.4).
package belief

import (
	"math/rand"

	"github.com/mlindqvist/despot/internal/pool"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Particle is a single weighted sample of the latent state, tagged with
// the scenario index whose random stream it must replay at every depth.
// Particles are always heap objects leased from a Pool, never embedded
// by value in a slice, so Expand can hand one back to the pool the
// moment a rollout terminates (spec.md §3).
type Particle struct {
	State    any
	Weight   float64
	Scenario int
}

// Pool leases and recycles Particle values so large trees don't thrash
// the allocator (spec.md §3). The Particle struct itself holds no
// resources; callers are responsible for freeing Particle.State via
// model.Model.Free before returning the Particle to the pool.
func NewPool() *pool.Pool[Particle] {
	return pool.New(func() *Particle { return &Particle{} }, func(p *Particle) {
		p.State = nil
		p.Weight = 0
		p.Scenario = 0
	})
}

// Belief is a caller-owned weighted set of latent states prior to
// scenario assignment, e.g. the output of a belief-tracking front end
// (out of scope for this module, spec.md §1).
type Belief struct {
	States  []any
	Weights []float64
}

// Mass returns the sum of weights in a particle set. At the root this
// should be 1.
func Mass(particles []*Particle) float64 {
	var m float64
	for _, p := range particles {
		m += p.Weight
	}
	return m
}

// Sample draws n particles from a belief with replacement, weighted by
// b.Weights, assigning each a fresh copy of its source state via copyFn
// (typically model.Model.Copy) and a scenario id in [0, n). Particles are
// leased from pp -- one Pool.Get per sampled particle -- so the returned
// slice's ownership (and the matching Pool.Put on teardown) follows the
// same discipline as particles created deeper in the tree by Expand.
//
// Sampling is grounded on gonum's weighted-sampling-with-replacement
// routine (gonum.org/v1/gonum/stat/sampleuv.WeightedSample), the same
// dependency family used for particle/experience sampling throughout
// samuelfneumann-GoLearn's environment and agent packages.
func Sample(b Belief, n int, copyFn func(any) any, pp *pool.Pool[Particle], src *rand.Rand) []*Particle {
	if len(b.States) == 0 || n <= 0 {
		return nil
	}
	idx := make([]int, n)
	sampleuv.WeightedSample(src, b.Weights, idx)

	particles := make([]*Particle, n)
	for i, si := range idx {
		p := pp.Get()
		p.State = copyFn(b.States[si])
		p.Weight = 1.0 / float64(n)
		p.Scenario = i
		particles[i] = p
	}
	return particles
}

// Renormalize scales every particle's weight by factor in place. Expand
// uses this after re-partitioning a Q-node's particles by observation, to
// preserve the parent's total mass (spec.md §4.4).
func Renormalize(particles []*Particle, factor float64) {
	if factor == 1 {
		return
	}
	for _, p := range particles {
		p.Weight *= factor
	}
}

// Free returns every particle to pp after freeing its State via freeFn
// (typically model.Model.Free). Used at every tree teardown path so no
// allocation escapes unpaired (spec.md §3, §5).
func Free(particles []*Particle, freeFn func(any), pp *pool.Pool[Particle]) {
	for _, p := range particles {
		if p.State != nil {
			freeFn(p.State)
		}
		pp.Put(p)
	}
}
