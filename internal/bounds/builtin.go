package bounds

import (
	"math"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/stream"
)

func init() {
	RegisterLowerBound("default-policy", newDefaultPolicyLowerBound)
	RegisterUpperBound("particle-upper", newParticleUpperBound)
}

// defaultPolicyLowerBound always recommends a single fixed action and
// estimates its value by rolling every particle forward with that action
// once and assuming the immediate reward repeats forever, discounted; a
// step that ends in a terminal state counts its reward once.
// This is the simplest ScenarioLowerBound shape the original DESPOT
// source ships (a fixed "default move" rollout), and it is the one this
// module self-registers so Planner.Search has a usable bound out of the
// box; domain models are expected to register richer bounds.
type defaultPolicyLowerBound struct {
	m      model.Model
	action model.ActionID
}

func newDefaultPolicyLowerBound(m model.Model) (LowerBound, error) {
	return &defaultPolicyLowerBound{m: m, action: 0}, nil
}

// WithAction returns a copy of the bound that recommends the given
// action instead of action 0.
func (b *defaultPolicyLowerBound) WithAction(a model.ActionID) *defaultPolicyLowerBound {
	return &defaultPolicyLowerBound{m: b.m, action: a}
}

func (b *defaultPolicyLowerBound) Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) (model.ActionID, float64) {
	if len(particles) == 0 {
		return b.action, 0
	}
	discount := b.m.Discount()
	var total float64
	for _, p := range particles {
		copyState := b.m.Copy(p.State)
		reward, _, terminal := b.m.Step(copyState, streams.Entry(p.Scenario, depth), b.action)
		b.m.Free(copyState)

		var value float64
		if terminal || discount >= 1 {
			value = reward
		} else {
			// Geometric series: reward repeated forever at this discount.
			value = reward / (1 - discount)
		}
		total += value * p.Weight
	}
	return b.action, total
}

// particleUpperBound estimates an optimistic value by taking, for every
// particle, the best immediate reward achievable across all actions and
// assuming it repeats forever -- an upper bound because no policy can do
// better than always taking its single best action with no downside.
type particleUpperBound struct {
	m model.Model
}

func newParticleUpperBound(m model.Model) (UpperBound, error) {
	return &particleUpperBound{m: m}, nil
}

func (b *particleUpperBound) Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) float64 {
	if len(particles) == 0 {
		return 0
	}
	discount := b.m.Discount()
	var total float64
	for _, p := range particles {
		best := math.Inf(-1)
		for a := 0; a < b.m.NumActions(); a++ {
			copyState := b.m.Copy(p.State)
			reward, _, _ := b.m.Step(copyState, streams.Entry(p.Scenario, depth), model.ActionID(a))
			b.m.Free(copyState)
			if reward > best {
				best = reward
			}
		}
		var value float64
		if discount >= 1 {
			value = best
		} else {
			value = best / (1 - discount)
		}
		total += value * p.Weight
	}
	return total
}
