package search

import (
	"math"

	"github.com/mlindqvist/despot/internal/tree"
)

// UpdateVNode recomputes v's bounds from its children (spec.md §4.5).
// Writes are monotone: lower only rises, upper and utility-upper only
// fall. A leaf's bounds come from InitBounds, not from children it
// doesn't have, so only its Done flag (already set at InitBounds time)
// is left alone here.
func UpdateVNode(v *tree.VNode) {
	if v.IsLeaf() {
		return
	}

	lower := v.DefaultValue
	upper := v.DefaultValue
	utilityUpper := math.Inf(-1)
	allDone := true

	for _, q := range v.Children {
		if q == nil {
			continue
		}
		if q.LowerBound > lower {
			lower = q.LowerBound
		}
		if q.UpperBound > upper {
			upper = q.UpperBound
		}
		if q.UtilityUpperBound > utilityUpper {
			utilityUpper = q.UtilityUpperBound
		}
		if !q.Done {
			allDone = false
		}
	}

	if lower > v.LowerBound {
		v.LowerBound = lower
	}
	if upper < v.UpperBound {
		v.UpperBound = upper
	}
	if utilityUpper < v.UtilityUpperBound {
		v.UtilityUpperBound = utilityUpper
	}
	v.Done = allDone
}

// UpdateQNode recomputes q's bounds as its step reward plus the sum of
// its children's bounds (spec.md §4.5). A Q-node with no children at
// all -- every particle terminated on this action -- is Done the
// moment it exists: there is nothing left below it search could ever
// expand.
func UpdateQNode(env *Env, q *tree.QNode) {
	lower := q.StepReward
	upper := q.StepReward
	utilityUpper := q.StepReward + env.Cfg.PruningConstant
	allDone := true

	for _, v := range q.Children {
		lower += v.LowerBound
		upper += v.UpperBound
		utilityUpper += v.UtilityUpperBound
		if !v.Done {
			allDone = false
		}
	}

	if lower > q.LowerBound {
		q.LowerBound = lower
	}
	if upper < q.UpperBound {
		q.UpperBound = upper
	}
	if utilityUpper < q.UtilityUpperBound {
		q.UtilityUpperBound = utilityUpper
	}
	q.Done = allDone
}

// Backup walks from v up to the root, updating each VNode then its
// parent QNode (spec.md §4.5). The root VNode's own update is taken
// under env.RootMu in addition to the caller's tree lock, per spec.md
// §9's parallel-backup design note.
func Backup(env *Env, v *tree.VNode) {
	cur := v
	for {
		if cur.Parent == nil {
			env.RootMu.Lock()
			UpdateVNode(cur)
			env.RootMu.Unlock()
		} else {
			UpdateVNode(cur)
		}

		q := cur.Parent
		if q == nil {
			break
		}

		UpdateQNode(env, q)
		cur = q.Parent
	}
}
