package search

import "github.com/mlindqvist/despot/internal/tree"

// FindBlocker walks from v towards the root, ancestor distance k
// starting at 1, looking for the first node whose utility upper bound
// cannot beat its own default-policy value even ignoring regularization
// on the k intervening actions: utility_upper - k*pruning_constant <=
// default_value (spec.md §4.6). Returns nil if none is found before the
// root.
func FindBlocker(env *Env, v *tree.VNode) *tree.VNode {
	cur := v
	count := 1
	for cur != nil {
		if cur.UtilityUpperBound-float64(count)*env.Cfg.PruningConstant <= cur.DefaultValue {
			break
		}
		count++
		if cur.Parent == nil {
			cur = nil
		} else {
			cur = cur.Parent.Parent
		}
	}
	return cur
}

// ExploitBlockers collapses the bounds of a blocked subtree to its
// default-policy value and re-backs it up, repeating two tree levels up
// at a time, until no further blocker is found (spec.md §4.6). A no-op
// when pruning_constant is 0, since blocker exploitation is the
// regularization mechanism's payoff.
//
// The branch below -- collapsing only cur when cur is itself the
// blocker or the root, collapsing every sibling when the blocker is a
// proper ancestor -- is preserved exactly from the original source;
// its correctness argument is non-obvious and spec.md §9 calls out
// this exact branch as regression-worthy.
func ExploitBlockers(env *Env, v *tree.VNode) {
	if env.Cfg.PruningConstant <= 0 {
		return
	}

	cur := v
	for cur != nil {
		blocker := FindBlocker(env, cur)
		if blocker == nil {
			break
		}

		if cur.Parent == nil || blocker == cur {
			collapse(cur)
		} else {
			for _, sibling := range cur.Parent.Children {
				collapse(sibling)
			}
		}

		Backup(env, cur)

		if cur.Parent == nil {
			cur = nil
		} else {
			cur = cur.Parent.Parent
		}
	}
}

// collapse pins a node's bounds to its default-policy value, as if no
// search had ever expanded it.
func collapse(v *tree.VNode) {
	value := v.DefaultValue
	v.LowerBound = value
	v.UpperBound = value
	v.UtilityUpperBound = value
}
