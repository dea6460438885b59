package search

import (
	"math/rand"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/bounds"
	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/stream"
	"github.com/mlindqvist/despot/internal/toymodel"
)

// newTestEnv builds an Env around a toy model with the given config,
// using a freshly built stream table seeded deterministically so
// callers get reproducible rand01 draws without needing their own
// *rand.Rand plumbing.
func newTestEnv(m *toymodel.Model, cfg config.Config, seed int64) *Env {
	lower, err := bounds.CreateLowerBound(cfg.LowerBoundName, m)
	if err != nil {
		panic(err)
	}
	upper, err := bounds.CreateUpperBound(cfg.UpperBoundName, m)
	if err != nil {
		panic(err)
	}
	streams := stream.NewFromRand(cfg.NumScenarios, cfg.SearchDepth, rand.New(rand.NewSource(seed)))
	return &Env{
		Model:   m,
		Streams: streams,
		Cfg:     cfg,
		Lower:   lower,
		Upper:   upper,
		Pool:    belief.NewPool(),
	}
}

// twoActionConfig is the S1/S2/S3 configuration: search_depth=2,
// discount=0.9, toy-rollout lower bound, particle-upper bound.
func twoActionConfig(numScenarios int) config.Config {
	cfg := config.Default()
	cfg.SearchDepth = 2
	cfg.NumScenarios = numScenarios
	cfg.Discount = 0.9
	cfg.LowerBoundName = "toy-rollout"
	cfg.UpperBoundName = "particle-upper"
	return cfg
}
