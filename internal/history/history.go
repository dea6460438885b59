// Package history implements the append-only (action, observation) trail
// that a search trial accumulates while descending the belief tree.
package history

import "github.com/mlindqvist/despot/internal/model"

// Step is one (action, observation) pair recorded while descending the tree.
type Step struct {
	Action model.ActionID
	Obs    model.ObsHash
}

// History is the trail of steps taken so far in the current trial.
//
// Only the tail is ever mutated during a trial: Push appends, Truncate
// rewinds. Every exit path of Trial and InitBounds must restore the
// pre-call length -- see Scoped.
type History []Step

// Push appends a step to the history.
func (h *History) Push(action model.ActionID, obs model.ObsHash) {
	*h = append(*h, Step{Action: action, Obs: obs})
}

// Truncate drops every step past index n. Truncating to the current
// length or beyond is a no-op.
func (h *History) Truncate(n int) {
	if n < len(*h) {
		*h = (*h)[:n]
	}
}

// RemoveLast truncates by one step. It is a no-op on an empty history.
func (h *History) RemoveLast() {
	if len(*h) > 0 {
		*h = (*h)[:len(*h)-1]
	}
}

// Size returns the number of steps recorded.
func (h *History) Size() int {
	return len(*h)
}

// Scoped pushes a step and returns a function that truncates the history
// back to its pre-push length. Intended to be used with defer:
//
//	restore := hist.Scoped(action, obs)
//	defer restore()
//
// This is the scope-guard Design Note §9 calls for: manual truncation at
// every return point of a function is a proven source of bugs, so callers
// should prefer defer'ing the returned closure over repeating Truncate.
func (h *History) Scoped(action model.ActionID, obs model.ObsHash) (restore func()) {
	n := h.Size()
	h.Push(action, obs)
	return func() {
		h.Truncate(n)
	}
}

// Clone returns an independent copy of the history.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}
