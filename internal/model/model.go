// Package model defines the single contract the search core consumes from
// the domain it plans over. Everything else -- geometry, reward shaping,
// action enumeration, transport -- lives behind this interface and is out
// of scope for the core (spec.md §1, §6.1).
package model

// ActionID indexes into the model's action set [0, NumActions()).
type ActionID int

// NoAction is a sentinel used where no action has been selected yet.
const NoAction ActionID = -1

// ObsHash is any 64-bit value stable for identical observations. Two
// particles that produce the same ObsHash under the same action are
// partitioned into the same child V-node.
type ObsHash uint64

// Model is the adapter the search core uses to simulate scenarios. It
// owns no tree state; every method either advances a caller-owned state
// in place or allocates/frees one from the model's own bookkeeping.
type Model interface {
	// NumActions returns the size of the action set [0, NumActions()).
	NumActions() int

	// Step advances state in place using rand01, a single draw already
	// taken from the determinized random stream (not a live RNG). It
	// returns the immediate reward, the observation produced, and
	// whether state is now terminal.
	Step(state any, rand01 float64, action ActionID) (reward float64, obs ObsHash, terminal bool)

	// ImportanceSamplingStep is the IS-biased counterpart of Step: same
	// contract, plus an importance ratio the caller multiplies into the
	// particle's weight (the original source mutates a weight field
	// embedded in its State; this module keeps particle weight outside
	// the opaque state, so the ratio travels back as a return value
	// instead). Which of Step/ImportanceSamplingStep is called is
	// selected by config.NoImportanceSampling.
	ImportanceSamplingStep(state any, rand01 float64, action ActionID) (reward float64, obs ObsHash, terminal bool, isRatio float64)

	// Copy returns an independent copy of state, typically leased from a
	// pool (see internal/pool).
	Copy(state any) any

	// Free releases state back to its pool. Every Copy must be paired
	// with exactly one Free along every search exit path.
	Free(state any)

	// Discount returns the per-depth-step discount factor, in (0, 1].
	Discount() float64
}
