// Package toymodel implements the small deterministic model.Model
// variants spec.md §8's seed scenarios (S1-S6) are built against: a
// handful of fixed reward tables driven by an explicit phase counter,
// never a live RNG. It exists for tests and as the runnable example
// behind cmd/despot-demo; the real domain model spec.md §1 scopes out
// of this module looks nothing like it.
package toymodel

import (
	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/model"
)

// State is the toy model's only piece of per-particle state: which row
// of the transition table governs the next Step call.
type State struct {
	Phase int
}

// transition describes what one action does from one phase.
type transition struct {
	Reward    float64
	Terminal  bool
	NextPhase int
}

// obsTerminal is the observation produced by any terminal step; since
// terminal particles are immediately freed and never produce a child
// V-node (spec.md §4.4), its value only matters for particles that
// share a transition but split observations some other way -- this
// model never needs that, so one constant suffices.
const obsTerminal model.ObsHash = 0

// Model is a table-driven model.Model: Transitions[phase][action] gives
// the reward, terminal flag and next phase: everything Step needs.
// Noise, when nonzero, perturbs every reward by a rand01-driven value
// in [-Noise, Noise] (spec.md §8 S2). ISRatioAction, when set, makes
// ImportanceSamplingStep report a ratio of 2 for rand01 < 0.5 and 0
// otherwise when that action is taken, everywhere else a ratio of 1
// (spec.md §8 S6) -- a stand-in for a real importance-sampling scheme,
// just enough to exercise the weight-reweighting path deterministically.
type Model struct {
	Transitions   [][]transition
	Noise         float64
	DiscountValue float64
	ISRatioAction model.ActionID
	hasISRatio    bool
}

// NumActions implements model.Model.
func (m *Model) NumActions() int {
	return len(m.Transitions[0])
}

// Discount implements model.Model.
func (m *Model) Discount() float64 {
	return m.DiscountValue
}

// Copy implements model.Model: States are small enough to copy by value
// without a pool of their own.
func (m *Model) Copy(state any) any {
	s := state.(*State)
	cp := *s
	return &cp
}

// Free implements model.Model. State holds no external resource, so
// there is nothing to release.
func (m *Model) Free(state any) {}

// Step implements model.Model.
func (m *Model) Step(state any, rand01 float64, action model.ActionID) (reward float64, obs model.ObsHash, terminal bool) {
	s := state.(*State)
	t := m.Transitions[s.Phase][action]

	reward = t.Reward
	if m.Noise > 0 {
		reward += (rand01*2 - 1) * m.Noise
	}
	terminal = t.Terminal
	s.Phase = t.NextPhase

	if terminal {
		obs = obsTerminal
	} else {
		obs = model.ObsHash(1 + s.Phase)
	}
	return reward, obs, terminal
}

// ImportanceSamplingStep implements model.Model.
func (m *Model) ImportanceSamplingStep(state any, rand01 float64, action model.ActionID) (reward float64, obs model.ObsHash, terminal bool, isRatio float64) {
	reward, obs, terminal = m.Step(state, rand01, action)
	isRatio = 1
	if m.hasISRatio && action == m.ISRatioAction {
		if rand01 < 0.5 {
			isRatio = 2
		} else {
			isRatio = 0
		}
	}
	return reward, obs, terminal, isRatio
}

// NewTwoAction builds the S1/S2/S3 toy: action 0 from the start phase
// pays 1 and ends the episode; action 1 pays 0 and moves to a second
// phase from which action 1 again pays 2 and ends the episode (action 0
// from that phase is a dead end paying 0, included only so every
// action is legal at every phase). noise sets the ±reward perturbation
// (0 for S1, 0.01 for S2/S3).
func NewTwoAction(noise float64) *Model {
	return &Model{
		DiscountValue: 0.9,
		Noise:         noise,
		Transitions: [][]transition{
			{
				{Reward: 1, Terminal: true, NextPhase: 0},
				{Reward: 0, Terminal: false, NextPhase: 1},
			},
			{
				{Reward: 0, Terminal: true, NextPhase: 0},
				{Reward: 2, Terminal: true, NextPhase: 0},
			},
		},
	}
}

// NewImportanceSamplingToy builds the S6 toy: the two-action model with
// ImportanceSamplingStep reporting ratio 2 or 0 for action 1, split by
// rand01. Action 1 is the non-terminal action at the start phase, so
// its partition actually survives into a child V-node -- action 0
// terminates immediately and would never carry a reweighted particle
// anywhere mass conservation could be checked. This is exactly the
// situation mass conservation must hold through: expanding action 1
// reweights every surviving particle by 2 or 0 before renormalizing,
// and the child's total mass must still equal the parent's.
func NewImportanceSamplingToy() *Model {
	m := NewTwoAction(0)
	m.ISRatioAction = 1
	m.hasISRatio = true
	return m
}

// NewPruningToy builds the S4 toy: three actions, one phase, every
// action terminal on its first step. Action 1 ("the middle action")
// pays marginally more than action 0 ("the default action") and action
// 2 pays noticeably less, so a pruning_constant larger than the
// action-1/action-0 margin makes action 1's subtree a blocker: its
// best-case advantage over the default can never clear the per-node
// regularization cost of having expanded it at all.
func NewPruningToy() *Model {
	return &Model{
		DiscountValue: 0.9,
		Transitions: [][]transition{
			{
				{Reward: 1.000, Terminal: true, NextPhase: 0},
				{Reward: 1.005, Terminal: true, NextPhase: 0},
				{Reward: 0.500, Terminal: true, NextPhase: 0},
			},
		},
	}
}

// InitialBelief returns a uniform belief over n copies of the start
// state (Phase 0), the only belief every toy model needs.
func InitialBelief(n int) belief.Belief {
	states := make([]any, n)
	weights := make([]float64, n)
	w := 1.0 / float64(n)
	for i := range states {
		states[i] = &State{}
		weights[i] = w
	}
	return belief.Belief{States: states, Weights: weights}
}
