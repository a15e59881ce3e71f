// Package simplifier shrinks coordinate structures taken from map
// geometries. It rounds every coordinate to a fixed number of decimals and
// drops consecutive points of a line or ring that sit closer together than
// a distance threshold, keeping rings closed.
//
// The package works on bare nested coordinates only. Reading a geometry
// envelope and writing the result back is left to the caller.
package simplifier

import (
	"math"

	"github.com/go-logr/logr"
)

// Simplifier holds a coordinate structure and the settings used to
// simplify it. A Simplifier is never modified after New, so it may be
// shared between goroutines.
type Simplifier struct {
	coordinates Node
	threshold   float64
	precision   int
	legacy      bool
	logger      logr.Logger
}

// Option configures a Simplifier.
type Option func(*Simplifier)

// WithThreshold sets the distance below which consecutive points are
// merged. Negative values are treated as zero and NaN as
// DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(s *Simplifier) {
		switch {
		case math.IsNaN(threshold):
			threshold = DefaultThreshold
		case threshold < 0:
			threshold = 0
		}
		s.threshold = threshold
	}
}

// WithPrecision sets the number of decimal places coordinates are rounded
// to.
func WithPrecision(places int) Option {
	return func(s *Simplifier) {
		if places < 0 {
			places = 0
		}
		s.precision = places
	}
}

// WithLegacyBaseThreshold makes line thinning always start from
// DefaultThreshold, ignoring WithThreshold. Older consumers were built
// against that behaviour.
func WithLegacyBaseThreshold(legacy bool) Option {
	return func(s *Simplifier) {
		s.legacy = legacy
	}
}

// WithLogger sets the logger. Thinning details are logged at V(2).
func WithLogger(logger logr.Logger) Option {
	return func(s *Simplifier) {
		s.logger = logger
	}
}

// New returns a Simplifier for coordinates.
func New(coordinates Node, opts ...Option) *Simplifier {
	s := &Simplifier{
		coordinates: coordinates,
		threshold:   DefaultThreshold,
		precision:   DefaultPrecision,
		logger:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the distance threshold line thinning starts from.
func (s *Simplifier) Threshold() float64 {
	if s.legacy {
		return DefaultThreshold
	}
	return s.threshold
}

// Simplify rounds the coordinates and then thins their lines and rings.
// The structure passed to New is not modified.
func (s *Simplifier) Simplify() Node {
	reduced := ReduceDecimals(s.coordinates, s.precision)
	return simplifyLines(reduced, s.Threshold(), s.logger)
}

// Simplify is shorthand for New(coordinates, WithThreshold(threshold)).Simplify().
func Simplify(coordinates Node, threshold float64) Node {
	return New(coordinates, WithThreshold(threshold)).Simplify()
}
