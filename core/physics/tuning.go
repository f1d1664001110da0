// Package physics implements the force-directed simulation core: pairwise
// repulsion, edge-based spring attraction, damped Euler integration, and
// convergence detection over a graph.Store.
package physics

import "fmt"

// TimeStep is the fixed integration step. Ticks advance simulated time by
// exactly this much regardless of wall-clock cadence.
const TimeStep = 1.0 / 60.0

// Tuning holds the force model constants. The defaults are empirically
// tuned rather than derived, so everything here is loadable from config
// instead of being hard-coded at use sites.
type Tuning struct {
	// RepulsionStrength scales the inverse-square repulsion between every
	// node pair.
	RepulsionStrength float64 `yaml:"repulsion_strength"`

	// AttractionStrength globally scales the spring force along
	// connections.
	AttractionStrength float64 `yaml:"attraction_strength"`

	// MinDistance floors the repulsion denominator: pairs closer than this
	// feel maximum repulsion, preventing singularities and overlap.
	MinDistance float64 `yaml:"min_distance"`

	// MaxDistance cuts repulsion off entirely beyond this separation,
	// bounding cost and long-range drift.
	MaxDistance float64 `yaml:"max_distance"`

	// Damping multiplies velocity each tick to prevent oscillation.
	Damping float64 `yaml:"damping"`

	// ConvergenceThreshold is the max per-node displacement per tick below
	// which the layout counts as settled.
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`

	// MaxIterations hard-caps a run. Hitting it is a normal terminal
	// outcome, not an error: contradictory force configurations may never
	// settle.
	MaxIterations int `yaml:"max_iterations"`
}

// DefaultTuning returns the tuned defaults.
func DefaultTuning() Tuning {
	return Tuning{
		RepulsionStrength:    5_000_000,
		AttractionStrength:   10,
		MinDistance:          30,
		MaxDistance:          600,
		Damping:              0.9,
		ConvergenceThreshold: 0.05,
		MaxIterations:        1000,
	}
}

// Validate checks the tuning values and returns an error describing the
// first malformed field.
func (t Tuning) Validate() error {
	if t.RepulsionStrength <= 0 {
		return fmt.Errorf("tuning: repulsion_strength must be positive, got %v", t.RepulsionStrength)
	}
	if t.AttractionStrength <= 0 {
		return fmt.Errorf("tuning: attraction_strength must be positive, got %v", t.AttractionStrength)
	}
	if t.MinDistance <= 0 {
		return fmt.Errorf("tuning: min_distance must be positive, got %v", t.MinDistance)
	}
	if t.MaxDistance <= t.MinDistance {
		return fmt.Errorf("tuning: max_distance (%v) must exceed min_distance (%v)", t.MaxDistance, t.MinDistance)
	}
	if t.Damping <= 0 || t.Damping >= 1 {
		return fmt.Errorf("tuning: damping must be in (0,1), got %v", t.Damping)
	}
	if t.ConvergenceThreshold <= 0 {
		return fmt.Errorf("tuning: convergence_threshold must be positive, got %v", t.ConvergenceThreshold)
	}
	if t.MaxIterations <= 0 {
		return fmt.Errorf("tuning: max_iterations must be positive, got %d", t.MaxIterations)
	}
	return nil
}
