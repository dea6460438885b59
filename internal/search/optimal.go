package search

import (
	"math"

	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/tree"
	"github.com/pkg/errors"
)

// OptimalAction returns the root's best action by lower bound: the
// child QNode with the greatest lower bound, ties broken by lowest
// action id, unless the root's own default move beats every child
// (spec.md §4.8). tb's injected policies, if set, can further override
// the result -- see SPEC_FULL.md §9 "Supplemented from original_source".
func OptimalAction(root *tree.VNode, tb config.TieBreak) (model.ActionID, float64, error) {
	best := model.NoAction
	bestValue := negInf

	for a, q := range root.Children {
		if q == nil {
			continue
		}
		if q.LowerBound > bestValue {
			bestValue = q.LowerBound
			best = model.ActionID(a)
		} else if q.LowerBound == bestValue && tb.PreferredAction != nil && model.ActionID(a) == *tb.PreferredAction {
			best = model.ActionID(a)
		}
	}

	if root.DefaultValue > bestValue {
		bestValue = root.DefaultValue
		best = root.DefaultAction
	}

	if best == model.NoAction {
		return model.NoAction, 0, errors.New("search: OptimalAction found no candidate action -- root has no children and no default move")
	}

	if tb.DeepPessimismOverride != nil {
		if override, ok := tb.DeepPessimismOverride(root.UpperBound, root.LowerBound); ok {
			return override, bestValue, nil
		}
	}

	return best, bestValue, nil
}

// ActionDistribution computes a temperature-softened softmax over the
// root's child QNode lower bounds, clamped to [-2, 2] before scaling --
// a diagnostic, not part of action selection, grounded on the original
// source's debug-only DESPOT::ImprovedPolicy (SPEC_FULL.md §9).
func ActionDistribution(root *tree.VNode, temperature float64) ([]float64, error) {
	n := len(root.Children)
	if n == 0 {
		return nil, errors.New("search: ActionDistribution called on a root with no children")
	}
	if temperature <= 0 {
		return nil, errors.Errorf("search: ActionDistribution temperature must be positive, got %v", temperature)
	}

	values := make([]float64, n)
	maxVal := negInf
	for a, q := range root.Children {
		v := q.LowerBound
		if v < -2 {
			v = -2
		}
		if v > 2 {
			v = 2
		}
		v /= temperature
		values[a] = v
		if v > maxVal {
			maxVal = v
		}
	}

	dist := make([]float64, n)
	var sum float64
	for a, v := range values {
		e := math.Exp(v - maxVal)
		dist[a] = e
		sum += e
	}
	for a := range dist {
		dist[a] /= sum
	}
	return dist, nil
}
