package parallel

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/bounds"
	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/search"
	"github.com/mlindqvist/despot/internal/stream"
	"github.com/mlindqvist/despot/internal/toymodel"
	"github.com/mlindqvist/despot/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveActionConfig() config.Config {
	return config.Config{
		SearchDepth:     3,
		NumScenarios:    20,
		Discount:        0.9,
		PruningConstant: 0,
		Xi:              0.95,
		TimePerMove:     time.Second,
		LowerBoundName:  "toy-rollout",
		UpperBoundName:  "particle-upper",
	}
}

// buildRoot samples a fresh belief and constructs an Env + initialized
// root VNode against it, so the sequential and parallel drivers below
// each get their own tree grown from identical particles and streams.
func buildRoot(m *toymodel.Model, cfg config.Config, seed int64) (*search.Env, *tree.VNode) {
	lower, err := bounds.CreateLowerBound(cfg.LowerBoundName, m)
	if err != nil {
		panic(err)
	}
	upper, err := bounds.CreateUpperBound(cfg.UpperBoundName, m)
	if err != nil {
		panic(err)
	}
	src := rand.New(rand.NewSource(seed))
	b := toymodel.InitialBelief(cfg.NumScenarios)
	pp := belief.NewPool()
	particles := belief.Sample(b, cfg.NumScenarios, m.Copy, pp, src)
	streams := stream.NewFromRand(cfg.NumScenarios, cfg.SearchDepth, src)

	env := &search.Env{
		Model:   m,
		Streams: streams,
		Cfg:     cfg,
		Lower:   lower,
		Upper:   upper,
		Pool:    pp,
	}
	root := &tree.VNode{Particles: particles}
	search.InitBounds(env, root, history.History{})
	return env, root
}

// S5: the parallel driver run to convergence against a pinned-per-action
// worker pool must land on the same optimal action as the sequential
// Trial/Backup loop run against an identically-seeded tree, even though
// the two never touch the same nodes.
func TestRunMatchesSequentialOptimalAction(t *testing.T) {
	m := toymodel.NewTwoAction(0.01)
	cfg := fiveActionConfig()

	seqEnv, seqRoot := buildRoot(m, cfg, 21)
	var hist history.History
	for trials := 0; trials < 200; trials++ {
		leaf := search.Trial(seqEnv, seqRoot, &hist)
		search.Backup(seqEnv, leaf)
		if search.Gap(seqRoot) <= 0 {
			break
		}
	}
	seqAction, _, err := search.OptimalAction(seqRoot, config.TieBreak{})
	require.NoError(t, err)

	parEnv, parRoot := buildRoot(m, cfg, 21)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, Run(ctx, parEnv, parRoot, 2))
	parAction, _, err := search.OptimalAction(parRoot, config.TieBreak{})
	require.NoError(t, err)

	assert.Equal(t, seqAction, parAction)
}

// Run must leave every root child either Done or reachable by its
// pinned worker -- nothing should stay unexpanded once the context
// deadline is reached with a generous budget.
func TestRunExpandsEveryRootAction(t *testing.T) {
	m := toymodel.NewTwoAction(0)
	cfg := fiveActionConfig()
	env, root := buildRoot(m, cfg, 30)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, Run(ctx, env, root, 2))

	assert.Len(t, root.Children, 2)
	for a, q := range root.Children {
		assert.NotNil(t, q, "action %d should have been spliced in by Run's initial expand", a)
	}
}

// A context already cancelled before Run starts must still return
// cleanly: the initial expand happens regardless, but no worker should
// block or panic trying to make progress against a dead context.
func TestRunReturnsPromptlyOnCancelledContext(t *testing.T) {
	m := toymodel.NewTwoAction(0)
	cfg := fiveActionConfig()
	env, root := buildRoot(m, cfg, 40)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, env, root, 2) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after context cancellation")
	}
}

// zeroActionModel satisfies model.Model with an empty action set, so
// root.IsLeaf() expands into zero children and Run must short-circuit
// rather than dividing by zero picking numWorkers.
type zeroActionModel struct{}

func (zeroActionModel) NumActions() int { return 0 }
func (zeroActionModel) Step(state any, rand01 float64, action model.ActionID) (float64, model.ObsHash, bool) {
	return 0, 0, true
}
func (zeroActionModel) ImportanceSamplingStep(state any, rand01 float64, action model.ActionID) (float64, model.ObsHash, bool, float64) {
	return 0, 0, true, 1
}
func (zeroActionModel) Copy(state any) any { return state }
func (zeroActionModel) Free(state any)     {}
func (zeroActionModel) Discount() float64  { return 0.9 }

func TestRunNoopsWhenRootHasNoActions(t *testing.T) {
	env := &search.Env{Model: zeroActionModel{}, Cfg: config.Config{SearchDepth: 3}, Pool: belief.NewPool()}
	root := &tree.VNode{}

	err := Run(context.Background(), env, root, 2)
	require.NoError(t, err)
}
