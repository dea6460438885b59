package stream

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromRandIsDeterministic(t *testing.T) {
	a := NewFromRand(10, 5, rand.New(rand.NewSource(42)))
	b := NewFromRand(10, 5, rand.New(rand.NewSource(42)))

	require.Equal(t, a.NumScenarios(), b.NumScenarios())
	require.Equal(t, a.Depth(), b.Depth())
	for s := 0; s < a.NumScenarios(); s++ {
		for d := 0; d < a.Depth(); d++ {
			assert.Equal(t, a.Entry(s, d), b.Entry(s, d))
		}
	}
}

func TestNewFromRandDiffersAcrossSeeds(t *testing.T) {
	a := NewFromRand(4, 4, rand.New(rand.NewSource(1)))
	b := NewFromRand(4, 4, rand.New(rand.NewSource(2)))

	differs := false
	for s := 0; s < 4; s++ {
		for d := 0; d < 4; d++ {
			if a.Entry(s, d) != b.Entry(s, d) {
				differs = true
			}
		}
	}
	assert.True(t, differs)
}

func TestEntriesAreUnitInterval(t *testing.T) {
	s := NewFromRand(20, 20, rand.New(rand.NewSource(7)))
	for scenario := 0; scenario < s.NumScenarios(); scenario++ {
		for d := 0; d < s.Depth(); d++ {
			v := s.Entry(scenario, d)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}
