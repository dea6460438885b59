package search

import (
	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/tree"
)

// FreeTree releases every particle allocated below the root during
// Expand back to env.Pool (spec.md §4.1 step 6, §5 "at tick end, Free
// is called on every surviving particle via root.Free(model)"). The
// root's own particles are not touched here -- they were leased
// directly from the belief by Planner.Search, which frees them itself,
// so every particle is freed exactly once regardless of how deep the
// tree grew.
func FreeTree(env *Env, v *tree.VNode) {
	for _, q := range v.Children {
		if q == nil {
			continue
		}
		for _, child := range q.Children {
			FreeTree(env, child)
		}
	}
	if v.Parent != nil {
		belief.Free(v.Particles, env.Model.Free, env.Pool)
	}
}
