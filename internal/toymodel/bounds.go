package toymodel

import (
	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/bounds"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/stream"
	"github.com/pkg/errors"
)

func init() {
	bounds.RegisterLowerBound("toy-rollout", newRolloutLowerBound)
}

// rolloutAction is the fixed policy toy-rollout commits to: in both toy
// models it is the action that is never worse than any alternative, so
// always taking it is a legal (if unambitious) ScenarioLowerBound.
const rolloutAction model.ActionID = 1

// rolloutHorizon bounds how many of the toy model's own Step calls one
// particle's rollout takes before giving up; both toy models reach a
// terminal state in one or two steps, so this is generous headroom, not
// a tuned constant.
const rolloutHorizon = 8

// rolloutLowerBound is a genuine ScenarioLowerBound in the sense
// bounds/builtin.go's defaultPolicyLowerBound is not: it replays
// rolloutAction forward through the model's own Step until the particle
// terminates, summing actual discounted rewards, instead of assuming
// the first reward repeats forever. The builtin bound's one-step-then-
// geometric-series shortcut is too coarse for S1/S2 (spec.md §8): it
// would only ever see the immediate step reward, never the delayed
// payoff two steps later that makes action 1 optimal.
type rolloutLowerBound struct {
	m *Model
}

func newRolloutLowerBound(m model.Model) (bounds.LowerBound, error) {
	tm, ok := m.(*Model)
	if !ok {
		return nil, errors.Errorf("toymodel: toy-rollout bound requires a *toymodel.Model, got %T", m)
	}
	return &rolloutLowerBound{m: tm}, nil
}

func (b *rolloutLowerBound) Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) (model.ActionID, float64) {
	var total float64
	for _, p := range particles {
		state := b.m.Copy(p.State)
		var sum, disc float64 = 0, 1
		maxSteps := rolloutHorizon
		if remaining := streams.Depth() - depth; remaining < maxSteps {
			maxSteps = remaining
		}
		for k := 0; k < maxSteps; k++ {
			reward, _, terminal := b.m.Step(state, streams.Entry(p.Scenario, depth+k), rolloutAction)
			sum += disc * reward
			disc *= b.m.DiscountValue
			if terminal {
				break
			}
		}
		b.m.Free(state)
		total += sum * p.Weight
	}
	return rolloutAction, total
}
