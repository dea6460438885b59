package search

import (
	"github.com/mlindqvist/despot/internal/generics"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/tree"
)

// Gap is the distance left to close at v: upper bound minus lower
// bound. Zero means no further search can improve v (spec.md §4.2).
func Gap(v *tree.VNode) float64 {
	return v.UpperBound - v.LowerBound
}

// epsilon is the gap threshold below which the tree-construction loop
// stops (spec.md §4.2).
const epsilon = 1e-6

// WEU is the Weighted Excess Uncertainty of v against root: v's own gap
// minus xi times v's particle weight times root's gap. Positive WEU
// means v still holds more than its fair share of the root's
// uncertainty and is worth expanding further (spec.md §4.3).
func WEU(env *Env, v, root *tree.VNode) float64 {
	return Gap(v) - env.Cfg.Xi*v.Weight()*Gap(root)
}

// SelectBestUpperBoundNode returns the non-done child QNode of v with
// the largest upper bound, ties broken by lowest action id (spec.md
// §4.3 step 4). Returns nil if v has no children or every child is
// Done.
func SelectBestUpperBoundNode(v *tree.VNode) *tree.QNode {
	var best *tree.QNode
	bestUpper := negInf
	for _, q := range v.Children {
		if q == nil || q.Done {
			continue
		}
		if q.UpperBound > bestUpper {
			bestUpper = q.UpperBound
			best = q
		}
	}
	return best
}

// SelectBestWEUNode returns the non-done child VNode of q with the
// largest WEU against root, or nil if every child is done (spec.md §4.3
// step 5). Go map iteration order is randomized, so observations are
// walked in ascending ObsHash order to keep tie-breaking deterministic
// across runs (spec.md §8 property 5).
func SelectBestWEUNode(env *Env, q *tree.QNode, root *tree.VNode) *tree.VNode {
	var best *tree.VNode
	bestWEU := negInf
	for _, v := range generics.SortedKeysAndValues(q.Children) {
		if v.Done {
			continue
		}
		weu := WEU(env, v, root)
		if weu >= bestWEU {
			bestWEU = weu
			best = v
		}
	}
	return best
}

// Trial descends from root, expanding every leaf it reaches on the way
// down, and returns the last node reached for the caller to Backup
// (spec.md §4.3). History is mutated during descent and restored to its
// pre-trial length before Trial returns -- a scoped, not manual,
// restoration (spec.md §9 "Scoped acquisition").
func Trial(env *Env, root *tree.VNode, hist *history.History) *tree.VNode {
	cur := root
	histSize := hist.Size()
	defer hist.Truncate(histSize)

	for {
		ExploitBlockers(env, cur)

		if Gap(cur) == 0 {
			break
		}

		if cur.IsLeaf() {
			Expand(env, cur, *hist)
		}

		qstar := SelectBestUpperBoundNode(cur)
		if qstar == nil {
			break
		}

		next := SelectBestWEUNode(env, qstar, root)
		if next == nil {
			break
		}

		cur = next
		hist.Push(qstar.Action, cur.Edge)

		if !(cur.Depth < env.Cfg.SearchDepth && WEU(env, cur, root) > 0) {
			break
		}
	}

	return cur
}
