package tree

import (
	"strings"
	"testing"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeafAndEnsureChildSlots(t *testing.T) {
	v := &VNode{}
	assert.True(t, v.IsLeaf())

	v.EnsureChildSlots(3)
	assert.False(t, v.IsLeaf())
	assert.Len(t, v.Children, 3)
	assert.Nil(t, v.Child(0))

	q := &QNode{Parent: v, Action: 1}
	v.Children[1] = q
	assert.Same(t, q, v.Child(1))
	assert.Nil(t, v.Child(5), "out-of-range action must return nil, not panic")
}

func TestEnsureChildSlotsPreservesExisting(t *testing.T) {
	v := &VNode{}
	v.EnsureChildSlots(2)
	q := &QNode{Action: 0}
	v.Children[0] = q

	v.EnsureChildSlots(4)
	assert.Len(t, v.Children, 4)
	assert.Same(t, q, v.Children[0])

	// Shrinking is a no-op.
	v.EnsureChildSlots(1)
	assert.Len(t, v.Children, 4)
}

func TestWeight(t *testing.T) {
	v := &VNode{Particles: []*belief.Particle{{Weight: 0.25}, {Weight: 0.75}}}
	assert.InDelta(t, 1.0, v.Weight(), 1e-12)
}

func TestSize(t *testing.T) {
	root := &VNode{}
	root.EnsureChildSlots(1)
	q := &QNode{Parent: root, Action: 0, Children: map[model.ObsHash]*VNode{}}
	root.Children[0] = q

	child := &VNode{Parent: q, Depth: 1}
	q.Children[0] = child

	assert.Equal(t, 3, root.Size(), "root + q-node + child v-node")
}

func TestDebugStringFollowsBestLowerBoundPath(t *testing.T) {
	root := &VNode{DefaultValue: 0.5}
	root.EnsureChildSlots(2)
	root.Children[0] = &QNode{Parent: root, Action: 0, LowerBound: 0.2, Children: map[model.ObsHash]*VNode{}}
	best := &QNode{Parent: root, Action: 1, LowerBound: 0.9, Children: map[model.ObsHash]*VNode{}}
	root.Children[1] = best

	child := &VNode{Parent: best, Depth: 1, DefaultValue: 0.1}
	best.Children[0] = child

	out := root.DebugString(5)
	require.Contains(t, out, "action=1")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2, "must descend into the best child, not every child")
}

func TestDebugStringStopsAtMaxDepth(t *testing.T) {
	root := &VNode{}
	root.EnsureChildSlots(1)
	q := &QNode{Parent: root, Action: 0, LowerBound: 1, Children: map[model.ObsHash]*VNode{}}
	root.Children[0] = q
	q.Children[0] = &VNode{Parent: q, Depth: 1}

	out := root.DebugString(0)
	assert.Equal(t, 1, strings.Count(out, "depth="))
}
