package search

import "github.com/mlindqvist/despot/internal/tree"

// PrunedVNode is a detached node produced by Prune: only the single
// best child survives, and only if it beats the default policy.
type PrunedVNode struct {
	Action int
	Value  float64
	Lower  float64
	Upper  float64
	Child  *PrunedQNode
}

// PrunedQNode mirrors PrunedVNode one level down.
type PrunedQNode struct {
	Action   int
	Value    float64
	Lower    float64
	Upper    float64
	Children map[uint64]*PrunedVNode
}

// Prune recursively builds the policy tree of v: at every VNode it
// keeps only the child QNode maximizing nu (step reward minus the
// pruning constant plus the sum of its own pruned children's value),
// collapsing to the default move if no child beats it (spec.md §4.7).
// Prune is an offline diagnostic -- never called from the live search --
// retained only as a tested regression utility per spec.md §9.
func Prune(env *Env, v *tree.VNode) (pruned *PrunedVNode, action int, value float64) {
	best := negInf
	bestAction := -1
	var bestChild *PrunedQNode

	for a, q := range v.Children {
		if q == nil {
			continue
		}
		child, nu := pruneQNode(env, q)
		if nu > best {
			best = nu
			bestAction = a
			bestChild = child
		}
	}

	if best < v.DefaultValue {
		best = v.DefaultValue
		bestAction = int(v.DefaultAction)
		bestChild = nil
	}

	return &PrunedVNode{
		Action: bestAction,
		Value:  best,
		Lower:  v.LowerBound,
		Upper:  v.UpperBound,
		Child:  bestChild,
	}, bestAction, best
}

func pruneQNode(env *Env, q *tree.QNode) (*PrunedQNode, float64) {
	value := q.StepReward - env.Cfg.PruningConstant
	children := make(map[uint64]*PrunedVNode, len(q.Children))

	for obs, v := range q.Children {
		childPruned, _, nu := Prune(env, v)
		if nu == v.DefaultValue {
			// The pruned child would just replay the default policy --
			// drop it, it adds nothing the parent's default doesn't
			// already cover.
			continue
		}
		children[uint64(obs)] = childPruned
		value += nu
	}

	return &PrunedQNode{
		Action:   int(q.Action),
		Value:    value,
		Lower:    q.LowerBound,
		Upper:    q.UpperBound,
		Children: children,
	}, value
}
