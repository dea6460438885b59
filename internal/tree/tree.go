// Package tree implements the belief/value (VNode) and action (QNode)
// nodes of the sparse AND/OR search tree (spec.md §3). Field names and
// shape follow the original DESPOT node.h layout; ownership follows Go
// idiom instead of the source's manual new/Free discipline where a GC
// makes that unnecessary -- only the particle sets route back through
// an explicit Pool (spec.md §5).
package tree

import (
	"fmt"
	"strings"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/generics"
	"github.com/mlindqvist/despot/internal/model"
)

// QNode is an action/AND-node: the child of a VNode reached by taking a
// fixed action, fanning out into one VNode per observation actually
// realized among its particles.
type QNode struct {
	// Parent is the VNode this action was taken from. Non-owning: QNode
	// does not keep Parent alive, it is only ever reached by descending
	// from it.
	Parent *VNode

	// Action is the action this node represents (the edge from Parent).
	Action model.ActionID

	// Children maps each observation actually realized while expanding
	// this action to the VNode holding the particles that produced it.
	Children map[model.ObsHash]*VNode

	// StepReward is the expected immediate reward of taking Action from
	// Parent's particles, weighted-averaged over them, discounted to the
	// root frame and minus the pruning constant.
	StepReward float64

	// LowerBound and UpperBound are step_reward plus the discounted sum
	// of each child VNode's bound, i.e. this node's own value bounds.
	LowerBound float64
	UpperBound float64

	// UtilityUpperBound is UpperBound with the pruning-constant penalty
	// removed, used only by the blocker-exploitation step so pruning
	// never contaminates the bound a parent actually backs up
	// (spec.md §4.6).
	UtilityUpperBound float64

	// Done marks a node whose subtree search will never change its
	// bounds again (spec.md §4.5): every child VNode is itself Done.
	Done bool
}

// VNode is a belief/OR-node: a set of same-history particles reached by
// a fixed sequence of actions and observations.
type VNode struct {
	// Parent is the QNode this belief was reached through. Nil at the
	// search root. Non-owning, as with QNode.Parent.
	Parent *QNode

	// Depth is this node's distance from the search root, 0 at the root.
	Depth int

	// Edge is the observation that produced this VNode from Parent (the
	// incoming edge label); meaningless at the root.
	Edge model.ObsHash

	// Particles are this node's determinized scenario states, each
	// tagged with the scenario whose random stream it replays. Owned by
	// this node: freeing a VNode means returning every particle here to
	// its Pool (spec.md §3, §5).
	Particles []*belief.Particle

	// Children holds one QNode per action ever expanded from this node,
	// indexed by action id. A nil entry means that action has not been
	// expanded yet.
	Children []*QNode

	// DefaultAction and DefaultValue are the action and value the
	// registered LowerBound recommends for Particles -- the fallback
	// played if search never improves on it.
	DefaultAction model.ActionID
	DefaultValue  float64

	// LowerBound and UpperBound are this node's current value bounds,
	// tightened by every Backup that touches it.
	LowerBound float64
	UpperBound float64

	// UtilityUpperBound mirrors QNode.UtilityUpperBound: the pruning-free
	// upper bound used when deciding whether a node is a blocker
	// (spec.md §4.6).
	UtilityUpperBound float64

	// Done marks a node that can never again change its bounds: either
	// Depth has hit the search depth limit, Particles is empty, or every
	// child QNode is Done (spec.md §4.5).
	Done bool
}

// IsLeaf reports whether v has never been expanded.
func (v *VNode) IsLeaf() bool {
	return len(v.Children) == 0
}

// Child returns the QNode for action a, or nil if it hasn't been
// expanded.
func (v *VNode) Child(a model.ActionID) *QNode {
	if int(a) < 0 || int(a) >= len(v.Children) {
		return nil
	}
	return v.Children[a]
}

// EnsureChildSlots grows v.Children to hold numActions entries, leaving
// existing entries untouched.
func (v *VNode) EnsureChildSlots(numActions int) {
	if len(v.Children) >= numActions {
		return
	}
	grown := make([]*QNode, numActions)
	copy(grown, v.Children)
	v.Children = grown
}

// Weight returns the total particle weight at v.
func (v *VNode) Weight() float64 {
	var w float64
	for _, p := range v.Particles {
		w += p.Weight
	}
	return w
}

// Size returns the number of nodes in the subtree rooted at v,
// including v itself.
func (v *VNode) Size() int {
	n := 1
	for _, q := range v.Children {
		if q != nil {
			n += q.Size()
		}
	}
	return n
}

// Size returns the number of nodes in the subtree rooted at q,
// including q itself.
func (q *QNode) Size() int {
	n := 1
	for _, v := range q.Children {
		n += v.Size()
	}
	return n
}

// Child returns the VNode reached by observation obs, or nil.
func (q *QNode) Child(obs model.ObsHash) *VNode {
	return q.Children[obs]
}

// DebugString renders v and its best-action subtree to maxDepth levels,
// one line per VNode: depth, the action its current lower bound favors,
// that action's value, and v's particle weight/count. Grounded on
// despot.cpp's debug-only OptimalAction2/OutputWeight, which walks the
// same best-lower-bound path rather than the whole tree -- printing
// every node of a real search tree is not useful, and DESPOT's own
// debug output agrees by construction (it also hard-stops at a fixed
// depth).
func (v *VNode) DebugString(maxDepth int) string {
	var b strings.Builder
	v.writeDebugString(&b, 0, maxDepth)
	return b.String()
}

func (v *VNode) writeDebugString(b *strings.Builder, indent, maxDepth int) {
	if v.Depth > maxDepth {
		return
	}

	best := model.NoAction
	bestValue := v.DefaultValue
	var bestChild *QNode
	for a, q := range v.Children {
		if q != nil && q.LowerBound > bestValue {
			bestValue = q.LowerBound
			best = model.ActionID(a)
			bestChild = q
		}
	}

	fmt.Fprintf(b, "%sdepth=%d action=%d value=%.4f weight=%.4f particles=%d\n",
		strings.Repeat("  ", indent), v.Depth, best, bestValue, v.Weight(), len(v.Particles))

	if bestChild == nil {
		return
	}
	for _, child := range generics.SortedKeysAndValues(bestChild.Children) {
		child.writeDebugString(b, indent+1, maxDepth)
	}
}
