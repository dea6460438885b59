package search

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/bounds"
	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/pool"
	"github.com/mlindqvist/despot/internal/stream"
	"github.com/mlindqvist/despot/internal/tree"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Result is the outcome of one Planner.Search call: richer than
// spec.md's bare (action, value) pair, so callers and tests can also
// assert on the root gap and trial count (SPEC_FULL.md §4.1).
type Result struct {
	Action model.ActionID
	Value  float64
	Gap    float64
	Trials int
}

// String renders a Result for log lines.
func (r Result) String() string {
	return fmt.Sprintf("action=%d value=%.4f gap=%.4g trials=%d", r.Action, r.Value, r.Gap, r.Trials)
}

// Planner owns the long-lived resources a sequence of Search calls
// shares: the particle pool (spec.md §6.3's "process-wide... lazily
// initialized" pool, scoped per Planner instead of a package global per
// SPEC_FULL.md §9) and the bound modules built once against the model.
type Planner struct {
	model model.Model
	lower bounds.LowerBound
	upper bounds.UpperBound
	pool  *pool.Pool[belief.Particle]
	tb    config.TieBreak
}

// NewPlanner constructs a Planner against m, building the named lower
// and upper bounds from cfg (internal/bounds's registry).
func NewPlanner(m model.Model, cfg config.Config) (*Planner, error) {
	lower, err := bounds.CreateLowerBound(cfg.LowerBoundName, m)
	if err != nil {
		return nil, errors.Wrap(err, "search: constructing lower bound")
	}
	upper, err := bounds.CreateUpperBound(cfg.UpperBoundName, m)
	if err != nil {
		return nil, errors.Wrap(err, "search: constructing upper bound")
	}
	return &Planner{
		model: m,
		lower: lower,
		upper: upper,
		pool:  belief.NewPool(),
		tb:    cfg.TieBreak,
	}, nil
}

// Search runs one planning tick: sample N particles from b, build a
// fresh determinized tree, trial/backup until the time budget or gap
// closes, extract the optimal root action, then free the tree
// (spec.md §4.1). A panic raised from inside the user-supplied Model
// during a trial is recovered and turned into an error -- the spec's
// "if a trial panics, the entire search call fails" (spec.md §7).
//
// src drives both the root particle sampling and the fresh
// RandomStreams construction; callers that need bit-identical repeat
// runs (spec.md §8 property 5, scenario S3) pass a rand.Rand seeded the
// same way across calls.
func (p *Planner) Search(ctx context.Context, b belief.Belief, src *rand.Rand, cfg config.Config) (result Result, err error) {
	if verr := cfg.Validate(); verr != nil {
		return Result{}, errors.Wrap(verr, "search: invalid configuration")
	}

	particles := belief.Sample(b, cfg.NumScenarios, p.model.Copy, p.pool, src)
	defer func() {
		belief.Free(particles, p.model.Free, p.pool)
	}()

	// InitBounds always evaluates the root bound at depth 0 below, even
	// when cfg.SearchDepth is 0 and no V-node will ever be expanded, so
	// the table needs at least one column regardless of the configured
	// depth.
	streamDepth := cfg.SearchDepth
	if streamDepth == 0 {
		streamDepth = 1
	}
	streams := stream.NewFromRand(cfg.NumScenarios, streamDepth, src)

	env := &Env{
		Model:   p.model,
		Streams: streams,
		Cfg:     cfg,
		Lower:   p.lower,
		Upper:   p.upper,
		Pool:    p.pool,
	}

	root := &tree.VNode{Particles: particles}
	defer FreeTree(env, root)

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("search: trial panicked: %v", r)
		}
	}()

	var hist history.History
	InitBounds(env, root, hist)

	klog.V(2).Infof("search: root initialized lower=%.4f upper=%.4f", root.LowerBound, root.UpperBound)

	if cfg.SearchDepth == 0 {
		// No V-node below the root may exist; the only legal answer is
		// the model's own default policy (spec.md §8 boundary behavior).
		return Result{
			Action: root.DefaultAction,
			Value:  root.DefaultValue,
			Gap:    Gap(root),
			Trials: 0,
		}, nil
	}

	trials := 0
	var usedSeconds float64
	for {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()

		leaf := Trial(env, root, &hist)
		Backup(env, leaf)

		usedSeconds += time.Since(start).Seconds()
		trials++

		gap := Gap(root)
		klog.V(3).Infof("search: trial %d leaf depth=%d gap=%.6g", trials, leaf.Depth, gap)

		if usedSeconds*(float64(trials)+1)/float64(trials) >= cfg.TimePerMove.Seconds() {
			break
		}
		if gap <= epsilon {
			break
		}
	}

	action, value, aerr := OptimalAction(root, p.tb)
	if aerr != nil {
		return Result{}, errors.Wrap(aerr, "search: extracting optimal action")
	}

	result = Result{
		Action: action,
		Value:  value,
		Gap:    Gap(root),
		Trials: trials,
	}

	if !cfg.Silence {
		klog.V(1).Infof("search: %s", result)
	}

	return result, nil
}
