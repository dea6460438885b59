package belief

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyInt(s any) any {
	v := s.(int)
	return &v
}

func TestSampleProducesWeightedMassOfOne(t *testing.T) {
	pp := NewPool()
	b := Belief{States: []any{1, 2, 3}, Weights: []float64{0.2, 0.3, 0.5}}
	src := rand.New(rand.NewSource(1))

	particles := Sample(b, 100, copyInt, pp, src)
	require.Len(t, particles, 100)

	assert.InDelta(t, 1.0, Mass(particles), 1e-9)
	for _, p := range particles {
		assert.Equal(t, 1.0/100, p.Weight)
		assert.True(t, p.Scenario >= 0 && p.Scenario < 100)
	}
}

func TestSampleEmptyBelief(t *testing.T) {
	pp := NewPool()
	src := rand.New(rand.NewSource(1))
	particles := Sample(Belief{}, 10, copyInt, pp, src)
	assert.Nil(t, particles)
}

func TestRenormalizeScalesWeights(t *testing.T) {
	pp := NewPool()
	particles := []*Particle{pp.Get(), pp.Get()}
	particles[0].Weight = 0.5
	particles[1].Weight = 0.5

	Renormalize(particles, 2)
	assert.InDelta(t, 1.0, particles[0].Weight, 1e-12)
	assert.InDelta(t, 1.0, particles[1].Weight, 1e-12)
}

func TestRenormalizeNoopAtFactorOne(t *testing.T) {
	pp := NewPool()
	p := pp.Get()
	p.Weight = 0.3
	Renormalize([]*Particle{p}, 1)
	assert.Equal(t, 0.3, p.Weight)
}

func TestFreeReturnsToPool(t *testing.T) {
	pp := NewPool()
	var freed []any
	p := pp.Get()
	p.State = 7
	p.Weight = 0.5
	Free([]*Particle{p}, func(s any) { freed = append(freed, s) }, pp)

	assert.Equal(t, []any{7}, freed)

	recycled := pp.Get()
	assert.Same(t, p, recycled, "Free must return the particle to the freelist")
	assert.Nil(t, recycled.State, "Put must reset State")
	assert.Equal(t, 0.0, recycled.Weight, "Put must reset Weight")
}
