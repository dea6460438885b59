// Package bounds implements the upper- and lower-value estimators DESPOT
// evaluates at every V-node (spec.md §4.4, §6.1). Bound modules must be
// deterministic given the streams and history they are handed.
package bounds

import (
	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/stream"
	"github.com/pkg/errors"
)

// LowerBound estimates a value and an accompanying default action for a
// particle set at a given depth/history. The returned action becomes the
// node's default_move -- the action played if no search improves on it.
type LowerBound interface {
	Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) (model.ActionID, float64)
}

// UpperBound estimates an optimistic value for a particle set.
type UpperBound interface {
	Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) float64
}

// LowerBoundFunc adapts a plain function to LowerBound.
type LowerBoundFunc func(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) (model.ActionID, float64)

// Value implements LowerBound.
func (f LowerBoundFunc) Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) (model.ActionID, float64) {
	return f(particles, streams, depth, hist)
}

// UpperBoundFunc adapts a plain function to UpperBound.
type UpperBoundFunc func(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) float64

// Value implements UpperBound.
func (f UpperBoundFunc) Value(particles []*belief.Particle, streams *stream.Streams, depth int, hist history.History) float64 {
	return f(particles, streams, depth, hist)
}

// LowerBoundBuilder constructs a named LowerBound given a model.
type LowerBoundBuilder func(m model.Model) (LowerBound, error)

// UpperBoundBuilder constructs a named UpperBound.
type UpperBoundBuilder func(m model.Model) (UpperBound, error)

// registeredLowerBounds and registeredUpperBounds mirror the teacher's
// internal/players registry (RegisteredScorers/RegisteredSearchers):
// named builders self-register via Register* and are looked up by name
// via Create*.
var (
	registeredLowerBounds = map[string]LowerBoundBuilder{}
	registeredUpperBounds = map[string]UpperBoundBuilder{}
)

// RegisterLowerBound registers a named LowerBound constructor. Panics on
// duplicate registration -- an init-time programming error, not a
// runtime condition.
func RegisterLowerBound(name string, builder LowerBoundBuilder) {
	if _, exists := registeredLowerBounds[name]; exists {
		panic("bounds: duplicate lower bound registration: " + name)
	}
	registeredLowerBounds[name] = builder
}

// RegisterUpperBound registers a named UpperBound constructor.
func RegisterUpperBound(name string, builder UpperBoundBuilder) {
	if _, exists := registeredUpperBounds[name]; exists {
		panic("bounds: duplicate upper bound registration: " + name)
	}
	registeredUpperBounds[name] = builder
}

// CreateLowerBound builds the named lower bound against m.
func CreateLowerBound(name string, m model.Model) (LowerBound, error) {
	builder, ok := registeredLowerBounds[name]
	if !ok {
		return nil, errors.Errorf("bounds: no lower bound registered with name %q", name)
	}
	return builder(m)
}

// CreateUpperBound builds the named upper bound against m.
func CreateUpperBound(name string, m model.Model) (UpperBound, error) {
	builder, ok := registeredUpperBounds[name]
	if !ok {
		return nil, errors.Errorf("bounds: no upper bound registered with name %q", name)
	}
	return builder(m)
}
