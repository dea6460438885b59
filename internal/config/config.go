// Package config defines the planner's tunables (spec.md §6.2) as a typed
// struct, plus a loader from the teacher's string-keyed parameters.Params
// format.
package config

import (
	"time"

	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/parameters"
	"github.com/pkg/errors"
)

// TieBreak holds the domain-flavored action-selection policies
// spec.md §4.8/§9 says should be injectable rather than hard-coded:
// the "prefer this action on an exact lower-bound tie" rule and the
// "deep pessimism" clamp that overrides the chosen action when the root
// gap is small and deeply negative.
type TieBreak struct {
	// PreferredAction, if non-nil, is preferred over any other action
	// whose root Q-node lower bound exactly ties the current best.
	PreferredAction *model.ActionID

	// DeepPessimismOverride, if non-nil, is evaluated against the root's
	// (upper, lower) bounds after the normal selection; if it returns
	// ok=true the returned action replaces whatever was selected.
	DeepPessimismOverride func(upper, lower float64) (model.ActionID, bool)
}

// Config holds every tunable named in spec.md §6.2.
type Config struct {
	// SearchDepth is the maximum V-node depth.
	SearchDepth int
	// NumScenarios is the number of particles sampled at the root, and
	// the first dimension of the random-streams table.
	NumScenarios int
	// Discount applied per depth step when scaling reward/bounds to the
	// root frame, in (0, 1].
	Discount float64
	// PruningConstant is the L1 regularizer subtracted per expanded
	// Q-node; 0 disables blocker exploitation.
	PruningConstant float64
	// Xi is WEU's target fraction of the root gap, in (0, 1].
	Xi float64
	// TimePerMove is the soft wall-clock budget per Search call.
	TimePerMove time.Duration
	// NoImportanceSampling selects plain Step (true) vs
	// ImportanceSamplingStep (false).
	NoImportanceSampling bool
	// Unnormalized skips weight renormalization after re-partitioning.
	Unnormalized bool
	// Silence quiets diagnostic logging.
	Silence bool

	// LowerBoundName/UpperBoundName select the registered bounds.Create*
	// constructor used to initialize new V-nodes.
	LowerBoundName string
	UpperBoundName string

	// NumWorkers is loaded from the "num_workers" key for use as the
	// worker count of internal/parallel.Run. search.Planner.Search does
	// not read it: it always runs the sequential trial loop.
	NumWorkers int

	// TieBreak is the injectable optimal-action policy (spec.md §4.8).
	TieBreak TieBreak
}

// Default returns the IS-DESPOT paper/source defaults.
func Default() Config {
	return Config{
		SearchDepth:     90,
		NumScenarios:    500,
		Discount:        0.95,
		PruningConstant: 0,
		Xi:              0.95,
		TimePerMove:     time.Second,
		LowerBoundName:  "default-policy",
		UpperBoundName:  "particle-upper",
	}
}

// Validate enforces the configuration-invalid fatal-at-entry checks of
// spec.md §7.
func (c Config) Validate() error {
	if c.TimePerMove <= 0 {
		return errors.New("config: time_per_move must be positive")
	}
	if c.SearchDepth < 0 {
		return errors.New("config: search_depth must be non-negative")
	}
	if c.NumScenarios <= 0 {
		return errors.New("config: num_scenarios must be positive")
	}
	if c.Discount <= 0 || c.Discount > 1 {
		return errors.New("config: discount must be in (0, 1]")
	}
	if c.Xi <= 0 || c.Xi > 1 {
		return errors.New("config: xi must be in (0, 1]")
	}
	if c.PruningConstant < 0 {
		return errors.New("config: pruning_constant must be non-negative")
	}
	return nil
}

// FromParams loads a Config from the teacher's string-keyed parameters
// format (internal/parameters), starting from Default() and overriding
// whatever keys are present. Every key it consumes is popped from params,
// so a caller can treat leftover keys as an error.
func FromParams(params parameters.Params) (cfg Config, err error) {
	cfg = Default()

	cfg.SearchDepth, err = parameters.PopParamOr(params, "search_depth", cfg.SearchDepth)
	if err != nil {
		return cfg, err
	}
	cfg.NumScenarios, err = parameters.PopParamOr(params, "num_scenarios", cfg.NumScenarios)
	if err != nil {
		return cfg, err
	}
	cfg.Discount, err = parameters.PopParamOr(params, "discount", cfg.Discount)
	if err != nil {
		return cfg, err
	}
	cfg.PruningConstant, err = parameters.PopParamOr(params, "pruning_constant", cfg.PruningConstant)
	if err != nil {
		return cfg, err
	}
	cfg.Xi, err = parameters.PopParamOr(params, "xi", cfg.Xi)
	if err != nil {
		return cfg, err
	}

	var timeSeconds float64
	timeSeconds, err = parameters.PopParamOr(params, "time_per_move", cfg.TimePerMove.Seconds())
	if err != nil {
		return cfg, err
	}
	cfg.TimePerMove = time.Duration(timeSeconds * float64(time.Second))

	cfg.NoImportanceSampling, err = parameters.PopParamOr(params, "no_importance_sampling", cfg.NoImportanceSampling)
	if err != nil {
		return cfg, err
	}
	cfg.Unnormalized, err = parameters.PopParamOr(params, "unnormalized", cfg.Unnormalized)
	if err != nil {
		return cfg, err
	}
	cfg.Silence, err = parameters.PopParamOr(params, "silence", cfg.Silence)
	if err != nil {
		return cfg, err
	}
	cfg.LowerBoundName, err = parameters.PopParamOr(params, "lower_bound", cfg.LowerBoundName)
	if err != nil {
		return cfg, err
	}
	cfg.UpperBoundName, err = parameters.PopParamOr(params, "upper_bound", cfg.UpperBoundName)
	if err != nil {
		return cfg, err
	}
	cfg.NumWorkers, err = parameters.PopParamOr(params, "num_workers", cfg.NumWorkers)
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}
