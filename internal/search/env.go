// Package search implements the trial/expand/backup belief-tree engine
// (spec.md §4): bound initialization, the single-trial descent, backup,
// blocker exploitation, pruning, and optimal-action extraction. All of
// it operates over explicit *tree.VNode/*tree.QNode values reached
// through an Env rather than package-level globals, so multiple
// Planners can run in the same process without sharing state beyond
// what they're explicitly handed (spec.md §9 Design Notes, "Dynamic
// polymorphism"/"Global mutable pool").
package search

import (
	"math"
	"sync"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/bounds"
	"github.com/mlindqvist/despot/internal/config"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/pool"
	"github.com/mlindqvist/despot/internal/stream"
)

// negInf stands in for the source's Globals::NEG_INFTY sentinel used to
// seed argmax loops.
var negInf = math.Inf(-1)

// Env bundles everything a Trial/Expand/Backup call needs besides the
// node it is operating on: the domain model, the determinized random
// streams for the current tick, configuration, the two bound modules,
// and the particle pool. It also carries the two mutexes the parallel
// driver (internal/parallel) needs to guard concurrent tree mutation;
// the sequential planner never takes TreeMu and takes RootMu
// uncontended inside Backup.
type Env struct {
	Model   model.Model
	Streams *stream.Streams
	Cfg     config.Config
	Lower   bounds.LowerBound
	Upper   bounds.UpperBound
	Pool    *pool.Pool[belief.Particle]

	// TreeMu is the coarse tree mutex (spec.md §4.9/§5): held across any
	// read or write of node topology, done flags, or bounds whenever more
	// than one goroutine can see the tree. Only internal/parallel takes
	// it; the sequential Planner never touches it at all, since a single
	// goroutine walking its own tree needs no locking discipline.
	TreeMu sync.Mutex

	// RootMu additionally serializes updates to the root VNode's own
	// bounds, per spec.md §9 ("unclear whether strictly necessary... treat
	// as required until a proof is written").
	RootMu sync.Mutex
}

// discount returns cfg.Discount raised to depth, the scaling factor
// that brings a value at the given tree depth back to the root frame.
func discount(cfg config.Config, depth int) float64 {
	if cfg.Discount >= 1 {
		return 1
	}
	d := 1.0
	base := cfg.Discount
	for i := 0; i < depth; i++ {
		d *= base
	}
	return d
}
