package physics

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/adalundhe/mindmesh/core/graph"
)

// =============================================================================
// State
// =============================================================================

// State is the integrator's position in its lifecycle.
type State int

const (
	// StateSeeded indicates initial positions are assigned and no tick has
	// run yet.
	StateSeeded State = iota
	// StateRunning indicates the integrator is ticking.
	StateRunning
	// StateConverged indicates per-tick movement fell below the threshold.
	StateConverged
	// StateStoppedAtMaxIterations indicates the iteration cap was reached
	// without convergence. This is an accepted best-effort layout, not a
	// failure.
	StateStoppedAtMaxIterations
	// StateCancelled indicates an external cancellation request.
	StateCancelled
)

// String returns the string representation of a state.
func (s State) String() string {
	if name, ok := stateStrings()[s]; ok {
		return name
	}
	return "unknown"
}

type stateStringMap map[State]string

func stateStrings() stateStringMap {
	return stateStringMap{
		StateSeeded:                 "seeded",
		StateRunning:                "running",
		StateConverged:              "converged",
		StateStoppedAtMaxIterations: "stopped_at_max_iterations",
		StateCancelled:              "cancelled",
	}
}

// IsTerminal returns true if no further ticks will run from this state.
func (s State) IsTerminal() bool {
	switch s {
	case StateConverged, StateStoppedAtMaxIterations, StateCancelled:
		return true
	}
	return false
}

// IsSettled returns true for the terminal states that produced a usable
// layout.
func (s State) IsSettled() bool {
	return s == StateConverged || s == StateStoppedAtMaxIterations
}

// =============================================================================
// Integrator
// =============================================================================

// Integrator drives the force simulation over a store, one tick at a time.
// Each tick reads a consistent kinematic snapshot, computes all forces
// from it, and applies every position update in a single locked step, so
// the store never exposes a half-applied tick and topology mutations made
// while running take effect exactly at the next tick boundary.
//
// Preconditions: all nodes in the store have positive mass; the store
// enforces this at insertion, so no integration step re-checks it.
type Integrator struct {
	store  *graph.Store
	tuning Tuning
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	iterations int
}

// NewIntegrator creates an integrator in StateSeeded. A nil logger falls
// back to slog.Default.
func NewIntegrator(store *graph.Store, tuning Tuning, logger *slog.Logger) *Integrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Integrator{
		store:  store,
		tuning: tuning,
		logger: logger,
		state:  StateSeeded,
	}
}

// State returns the current state.
func (it *Integrator) State() State {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

// Iterations returns the number of ticks executed so far.
func (it *Integrator) Iterations() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.iterations
}

// Tuning returns the force constants in effect.
func (it *Integrator) Tuning() Tuning {
	return it.tuning
}

// Cancel transitions to StateCancelled. Safe to call from any state and
// idempotent: once terminal, the state never changes again.
func (it *Integrator) Cancel() {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state.IsTerminal() {
		return
	}
	it.state = StateCancelled
}

// Step executes one tick and returns the resulting state. Calling Step in
// a terminal state is a no-op returning that state.
func (it *Integrator) Step() State {
	it.mu.Lock()
	if it.state.IsTerminal() {
		state := it.state
		it.mu.Unlock()
		return state
	}
	it.state = StateRunning
	it.mu.Unlock()

	maxDisplacement := it.tick()

	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state.IsTerminal() {
		// Cancelled mid-tick; the completed tick stands but no further
		// ticks run.
		return it.state
	}

	it.iterations++
	switch {
	case maxDisplacement < it.tuning.ConvergenceThreshold:
		it.state = StateConverged
		it.logger.Debug("layout converged",
			"iterations", it.iterations,
			"max_displacement", maxDisplacement)
	case it.iterations >= it.tuning.MaxIterations:
		it.state = StateStoppedAtMaxIterations
		it.logger.Debug("layout stopped at iteration cap",
			"iterations", it.iterations,
			"max_displacement", maxDisplacement)
	}
	return it.state
}

// tick computes and applies one simulation step, returning the maximum
// per-node displacement.
func (it *Integrator) tick() float64 {
	bodies := it.store.Bodies()
	if len(bodies) == 0 {
		return 0
	}
	springs := it.store.Springs()

	index := make(map[string]int, len(bodies))
	for i, b := range bodies {
		index[b.ID] = i
	}

	forces := make([]r2.Vec, len(bodies))
	accumRepulsion(bodies, forces, it.tuning)
	accumAttraction(bodies, index, springs, forces, it.tuning)

	updates := make([]graph.BodyUpdate, len(bodies))
	var maxDisplacement float64
	for i, b := range bodies {
		update, displacement := integrate(b, forces[i], it.tuning)
		updates[i] = update
		if displacement > maxDisplacement {
			maxDisplacement = displacement
		}
	}

	it.store.ApplyKinematics(updates)
	return maxDisplacement
}
