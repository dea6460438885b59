package search

import (
	"testing"

	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrunePicksBestQNode(t *testing.T) {
	env := &Env{Cfg: config.Config{PruningConstant: 0}}

	root := &tree.VNode{DefaultAction: 0, DefaultValue: 0}
	root.EnsureChildSlots(2)
	root.Children[0] = &tree.QNode{Action: 0, StepReward: 1, Children: map[model.ObsHash]*tree.VNode{}}
	root.Children[1] = &tree.QNode{Action: 1, StepReward: 3, Children: map[model.ObsHash]*tree.VNode{}}

	pruned, action, value := Prune(env, root)
	require.NotNil(t, pruned)
	assert.Equal(t, 1, action)
	assert.Equal(t, 3.0, value)
	assert.Equal(t, 1, pruned.Action)
}

func TestPruneCollapsesToDefaultWhenNoChildBeatsIt(t *testing.T) {
	env := &Env{Cfg: config.Config{PruningConstant: 0}}

	root := &tree.VNode{DefaultAction: 5, DefaultValue: 10}
	root.EnsureChildSlots(1)
	root.Children[0] = &tree.QNode{Action: 0, StepReward: 1, Children: map[model.ObsHash]*tree.VNode{}}

	pruned, action, value := Prune(env, root)
	assert.Equal(t, 5, action)
	assert.Equal(t, 10.0, value)
	assert.Nil(t, pruned.Child)
}

func TestPruneDropsChildrenThatOnlyReplayDefault(t *testing.T) {
	env := &Env{Cfg: config.Config{PruningConstant: 0}}

	// The leaf has no children of its own, so its pruned value is just
	// its default value (2) -- and since that equals its own default,
	// pruneQNode below must decline to fold it into q's children map.
	leaf := &tree.VNode{DefaultAction: 0, DefaultValue: 2}
	q := &tree.QNode{Action: 0, StepReward: 0, Children: map[model.ObsHash]*tree.VNode{0: leaf}}
	root := &tree.VNode{DefaultAction: 0, DefaultValue: -5}
	root.EnsureChildSlots(1)
	root.Children[0] = q

	pruned, action, value := Prune(env, root)
	assert.Equal(t, 0, action)
	assert.Equal(t, 0.0, value, "the leaf's value folded away, leaving only q's bare step reward")
	require.NotNil(t, pruned.Child)
	assert.Empty(t, pruned.Child.Children, "a child whose pruned value equals its default contributes nothing and is dropped")
}

func TestPruneIsIdempotentOnAnAlreadyCollapsedTree(t *testing.T) {
	env := &Env{Cfg: config.Config{PruningConstant: 0}}

	root := &tree.VNode{DefaultAction: 2, DefaultValue: 7}

	_, action1, value1 := Prune(env, root)
	_, action2, value2 := Prune(env, root)
	assert.Equal(t, action1, action2)
	assert.Equal(t, value1, value2)
}
