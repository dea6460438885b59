package search

import (
	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/generics"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/tree"
)

// Expand fans a leaf VNode out into one QNode per model action
// (spec.md §4.4). v must be a leaf; Expand is not idempotent: a second
// call overwrites v's existing QNodes with freshly built ones and does
// not return the old ones' particles to the pool, so callers (Trial)
// guard with v.IsLeaf() first.
func Expand(env *Env, v *tree.VNode, hist history.History) {
	children := BuildChildren(env, v, hist)
	v.EnsureChildSlots(len(children))
	copy(v.Children, children)
}

// BuildChildren computes the full QNode fan-out for v without touching
// v itself: every QNode it returns has Parent set to v, but v.Children
// is left untouched. This lets a caller simulate and allocate the new
// subtree while v is visible to other readers, and splice the result
// in afterwards under whatever lock its driver uses -- the parallel
// driver's unlocked-expand/locked-splice discipline (spec.md §4.9)
// depends on this split; the sequential Planner just calls Expand,
// which does both steps back to back.
func BuildChildren(env *Env, v *tree.VNode, hist history.History) []*tree.QNode {
	n := env.Model.NumActions()
	children := make([]*tree.QNode, n)
	for a := 0; a < n; a++ {
		q := &tree.QNode{Parent: v, Action: model.ActionID(a)}
		expandAction(env, q, hist)
		children[a] = q
	}
	return children
}

// expandAction simulates every particle of q.Parent under q.Action,
// partitions survivors by observation, renormalizes their weight to
// preserve the parent's mass, and builds one child VNode per distinct
// observation (spec.md §4.4).
func expandAction(env *Env, q *tree.QNode, hist history.History) {
	parent := q.Parent
	depth := parent.Depth

	partitions := map[model.ObsHash][]*belief.Particle{}

	parentMass := parent.Weight()
	var stepReward float64

	for _, p := range parent.Particles {
		copyState := env.Model.Copy(p.State)
		rand01 := env.Streams.Entry(p.Scenario, depth)

		var reward float64
		var obs model.ObsHash
		var terminal bool
		weight := p.Weight

		if env.Cfg.NoImportanceSampling {
			reward, obs, terminal = env.Model.Step(copyState, rand01, q.Action)
		} else {
			var isRatio float64
			reward, obs, terminal, isRatio = env.Model.ImportanceSamplingStep(copyState, rand01, q.Action)
			weight *= isRatio
		}

		stepReward += reward * p.Weight

		if terminal {
			env.Model.Free(copyState)
			continue
		}

		np := env.Pool.Get()
		np.State = copyState
		np.Weight = weight
		np.Scenario = p.Scenario

		partitions[obs] = append(partitions[obs], np)
	}

	var childrenMass float64
	for _, ps := range partitions {
		childrenMass += belief.Mass(ps)
	}

	var normalizer float64
	if env.Cfg.Unnormalized || childrenMass == 0 {
		normalizer = 1
	} else {
		normalizer = parentMass / childrenMass
	}
	for _, ps := range partitions {
		belief.Renormalize(ps, normalizer)
	}

	stepReward = discount(env.Cfg, depth)*stepReward - env.Cfg.PruningConstant

	lower := stepReward
	upper := stepReward

	q.Children = make(map[model.ObsHash]*tree.VNode, len(partitions))
	for obs := range generics.SortedKeys(partitions) {
		child := &tree.VNode{
			Parent:    q,
			Depth:     parent.Depth + 1,
			Edge:      obs,
			Particles: partitions[obs],
		}
		q.Children[obs] = child

		restore := hist.Scoped(q.Action, obs)
		InitBounds(env, child, hist)
		restore()

		lower += child.LowerBound
		upper += child.UpperBound
	}

	q.StepReward = stepReward
	q.LowerBound = lower
	q.UpperBound = upper
	q.UtilityUpperBound = upper + env.Cfg.PruningConstant
	// Every particle terminated under this action: the empty observation
	// partition edge case (spec.md §4.4) leaves nothing for search to
	// ever expand below q, so it is Done on arrival rather than waiting
	// for a Backup that may never revisit it.
	q.Done = len(q.Children) == 0
}
