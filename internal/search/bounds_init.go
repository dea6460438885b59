package search

import (
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/tree"
)

// InitLowerBound evaluates the registered lower bound over v's particles
// and stores it as v's default move and initial lower bound (spec.md
// §4.4 "InitBounds").
func InitLowerBound(env *Env, v *tree.VNode, hist history.History) {
	action, value := env.Lower.Value(v.Particles, env.Streams, v.Depth, hist)
	value *= discount(env.Cfg, v.Depth)
	v.DefaultAction = action
	v.DefaultValue = value
	v.LowerBound = value
}

// InitUpperBound evaluates the registered upper bound, storing both the
// regularization-free UtilityUpperBound and the regularized UpperBound.
func InitUpperBound(env *Env, v *tree.VNode, hist history.History) {
	upper := env.Upper.Value(v.Particles, env.Streams, v.Depth, hist)
	d := discount(env.Cfg, v.Depth)
	v.UtilityUpperBound = upper * d
	v.UpperBound = upper*d - env.Cfg.PruningConstant
}

// InitBounds runs InitLowerBound then InitUpperBound, clamping the
// upper bound down to the lower bound whenever the bounds would
// otherwise cross or v is at the deepest allowed depth -- no further
// search can ever improve a node at the depth limit (spec.md §4.4). A
// freshly created leaf is marked Done right here, not left for some
// later Backup to notice: a sibling V-node an observation split
// produced but a trial never happens to revisit would otherwise keep
// Done false forever even though its bounds already coincide.
func InitBounds(env *Env, v *tree.VNode, hist history.History) {
	InitLowerBound(env, v, hist)
	InitUpperBound(env, v, hist)
	if v.UpperBound < v.LowerBound || v.Depth == env.Cfg.SearchDepth-1 {
		v.UpperBound = v.LowerBound
	}
	v.Done = v.UpperBound <= v.LowerBound
}
