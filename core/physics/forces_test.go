package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/adalundhe/mindmesh/core/graph"
)

func TestRepulsionZeroBeyondMaxDistance(t *testing.T) {
	tuning := DefaultTuning()

	f := repulsion(r2.Vec{}, r2.Vec{X: tuning.MaxDistance + 1}, tuning)
	assert.Equal(t, r2.Vec{}, f)
}

func TestRepulsionClampedBelowMinDistance(t *testing.T) {
	tuning := DefaultTuning()

	atFloor := repulsion(r2.Vec{}, r2.Vec{X: tuning.MinDistance}, tuning)
	closer := repulsion(r2.Vec{}, r2.Vec{X: tuning.MinDistance / 3}, tuning)

	// Closer than the floor applies maximum repulsion, no stronger.
	assert.InDelta(t, r2.Norm(atFloor), r2.Norm(closer), 1e-9)

	expected := tuning.RepulsionStrength / (tuning.MinDistance * tuning.MinDistance)
	assert.InDelta(t, expected, r2.Norm(closer), 1e-9)
}

func TestRepulsionInverseSquare(t *testing.T) {
	tuning := DefaultTuning()

	near := r2.Norm(repulsion(r2.Vec{}, r2.Vec{X: 100}, tuning))
	far := r2.Norm(repulsion(r2.Vec{}, r2.Vec{X: 200}, tuning))
	assert.InDelta(t, 4.0, near/far, 1e-9)
}

func TestRepulsionPushesApart(t *testing.T) {
	tuning := DefaultTuning()

	f := repulsion(r2.Vec{X: 10}, r2.Vec{X: 110}, tuning)
	assert.Negative(t, f.X)
	assert.Zero(t, f.Y)
}

func TestRepulsionCoincidentNodesSeparate(t *testing.T) {
	tuning := DefaultTuning()

	f := repulsion(r2.Vec{X: 5, Y: 5}, r2.Vec{X: 5, Y: 5}, tuning)
	assert.NotEqual(t, r2.Vec{}, f)

	// Deterministic: same inputs, same direction.
	again := repulsion(r2.Vec{X: 5, Y: 5}, r2.Vec{X: 5, Y: 5}, tuning)
	assert.Equal(t, f, again)
}

func TestAttractionOnlyAlongSprings(t *testing.T) {
	tuning := DefaultTuning()
	bodies := []graph.Body{
		{ID: "a", Pos: r2.Vec{}, Mass: 10, Attraction: 0.5},
		{ID: "b", Pos: r2.Vec{X: 100}, Mass: 10, Attraction: 0.5},
		{ID: "c", Pos: r2.Vec{X: 50, Y: 200}, Mass: 10, Attraction: 0.5},
	}
	index := map[string]int{"a": 0, "b": 1, "c": 2}
	springs := []graph.Spring{{Source: "a", Target: "b", Strength: 1, Attraction: 0.5}}

	forces := make([]r2.Vec, len(bodies))
	accumAttraction(bodies, index, springs, forces, tuning)

	assert.Positive(t, forces[0].X)
	assert.Negative(t, forces[1].X)
	assert.Equal(t, r2.Vec{}, forces[2], "unconnected node must feel no attraction")
}

func TestAttractionProportionalToDistanceAndStrength(t *testing.T) {
	tuning := DefaultTuning()
	pull := func(distance, strength float64) float64 {
		bodies := []graph.Body{
			{ID: "a", Mass: 10, Attraction: 0.5},
			{ID: "b", Pos: r2.Vec{X: distance}, Mass: 10, Attraction: 0.5},
		}
		index := map[string]int{"a": 0, "b": 1}
		springs := []graph.Spring{{Source: "a", Target: "b", Strength: strength, Attraction: 0.5}}
		forces := make([]r2.Vec, 2)
		accumAttraction(bodies, index, springs, forces, tuning)
		return r2.Norm(forces[0])
	}

	assert.InDelta(t, 2.0, pull(200, 1)/pull(100, 1), 1e-9)
	assert.InDelta(t, 2.0, pull(100, 1)/pull(100, 0.5), 1e-9)
}

func TestAttractionSkipsDanglingSpring(t *testing.T) {
	tuning := DefaultTuning()
	bodies := []graph.Body{{ID: "a", Mass: 10, Attraction: 0.5}}
	index := map[string]int{"a": 0}
	springs := []graph.Spring{{Source: "a", Target: "removed", Strength: 1, Attraction: 0.5}}

	forces := make([]r2.Vec, 1)
	accumAttraction(bodies, index, springs, forces, tuning)
	assert.Equal(t, r2.Vec{}, forces[0])
}

func TestAccumRepulsionIsSymmetric(t *testing.T) {
	tuning := DefaultTuning()
	bodies := []graph.Body{
		{ID: "a", Pos: r2.Vec{}, Mass: 10},
		{ID: "b", Pos: r2.Vec{X: 80, Y: 60}, Mass: 10},
	}

	forces := make([]r2.Vec, 2)
	accumRepulsion(bodies, forces, tuning)

	assert.InDelta(t, forces[0].X, -forces[1].X, 1e-9)
	assert.InDelta(t, forces[0].Y, -forces[1].Y, 1e-9)
}

func TestIntegrateDampedEuler(t *testing.T) {
	tuning := DefaultTuning()
	body := graph.Body{
		ID:   "a",
		Pos:  r2.Vec{X: 1, Y: 1},
		Vel:  r2.Vec{X: 6},
		Mass: 10,
	}
	force := r2.Vec{X: 100}

	update, displacement := integrate(body, force, tuning)
	require.Equal(t, "a", update.ID)

	// v = (6 + (100/10)*dt) * damping, p = p + v*dt
	expectedVel := (6 + 10*TimeStep) * tuning.Damping
	assert.InDelta(t, expectedVel, update.Vel.X, 1e-9)
	assert.InDelta(t, 1+expectedVel*TimeStep, update.Pos.X, 1e-9)
	assert.InDelta(t, expectedVel*TimeStep, displacement, 1e-9)

	// No force on Y, velocity zero: no drift.
	assert.InDelta(t, 1.0, update.Pos.Y, 1e-9)
}

func TestTuningValidate(t *testing.T) {
	require.NoError(t, DefaultTuning().Validate())

	cases := map[string]func(*Tuning){
		"zero repulsion":      func(c *Tuning) { c.RepulsionStrength = 0 },
		"zero attraction":     func(c *Tuning) { c.AttractionStrength = 0 },
		"zero min distance":   func(c *Tuning) { c.MinDistance = 0 },
		"inverted distances":  func(c *Tuning) { c.MaxDistance = c.MinDistance },
		"damping too high":    func(c *Tuning) { c.Damping = 1 },
		"damping negative":    func(c *Tuning) { c.Damping = -0.1 },
		"zero threshold":      func(c *Tuning) { c.ConvergenceThreshold = 0 },
		"zero max iterations": func(c *Tuning) { c.MaxIterations = 0 },
	}
	for name, mutate := range cases {
		tuning := DefaultTuning()
		mutate(&tuning)
		assert.Error(t, tuning.Validate(), name)
	}
}
