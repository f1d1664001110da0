package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/adalundhe/mindmesh/core/graph"
)

// accumRepulsion adds the clamped inverse-square repulsion between every
// unordered body pair into forces. Bodies are evaluated from the same
// snapshot, so evaluation order cannot affect the result.
func accumRepulsion(bodies []graph.Body, forces []r2.Vec, t Tuning) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			f := repulsion(bodies[i].Pos, bodies[j].Pos, t)
			forces[i] = r2.Add(forces[i], f)
			forces[j] = r2.Sub(forces[j], f)
		}
	}
}

// repulsion returns the force pushing a away from b.
func repulsion(a, b r2.Vec, t Tuning) r2.Vec {
	delta := r2.Sub(a, b)
	d := r2.Norm(delta)
	if d > t.MaxDistance {
		return r2.Vec{}
	}

	// Coincident nodes have no defined separation axis. Push along a
	// fixed axis so they still separate deterministically.
	if d == 0 {
		delta = r2.Vec{X: 1}
		d = 1
	}

	effective := math.Max(d, t.MinDistance)
	magnitude := t.RepulsionStrength / (effective * effective)
	return r2.Scale(magnitude/d, delta)
}

// accumAttraction adds the linear spring force for every connection into
// forces. Unconnected pairs receive no attraction.
func accumAttraction(bodies []graph.Body, index map[string]int, springs []graph.Spring, forces []r2.Vec, t Tuning) {
	for _, spring := range springs {
		i, iOK := index[spring.Source]
		j, jOK := index[spring.Target]
		if !iOK || !jOK {
			continue
		}

		delta := r2.Sub(bodies[j].Pos, bodies[i].Pos)
		d := r2.Norm(delta)
		if d == 0 {
			continue
		}

		magnitude := d * spring.Attraction * spring.Strength * t.AttractionStrength
		f := r2.Scale(magnitude/d, delta)
		forces[i] = r2.Add(forces[i], f)
		forces[j] = r2.Sub(forces[j], f)
	}
}

// integrate advances one body by a tick: a = F/m, damped velocity update,
// position update. Returns the new kinematics and the displacement the
// body moved this tick.
func integrate(b graph.Body, force r2.Vec, t Tuning) (graph.BodyUpdate, float64) {
	accel := r2.Scale(1/b.Mass, force)
	vel := r2.Scale(t.Damping, r2.Add(b.Vel, r2.Scale(TimeStep, accel)))
	step := r2.Scale(TimeStep, vel)

	return graph.BodyUpdate{
		ID:  b.ID,
		Pos: r2.Add(b.Pos, step),
		Vel: vel,
	}, r2.Norm(step)
}
