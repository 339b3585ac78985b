package helio

// GravitySource yields the gravitational acceleration at a position. The two
// implementations, DirectSum and Octree, are interchangeable and selected per
// call by the vehicle integrator.
type GravitySource interface {
	ComputeAcceleration(position []float64, G float64) []float64
}

// DirectSum computes gravity by exact O(n) summation over the registry,
// skipping the named body and near-zero separations.
type DirectSum struct {
	Bodies BodyMap
	Skip   string
}

// ComputeAcceleration implements the GravitySource interface.
func (d DirectSum) ComputeAcceleration(position []float64, G float64) []float64 {
	acc := []float64{0, 0, 0}
	for name, body := range d.Bodies {
		if name == d.Skip {
			continue
		}
		delta := sub(position, body.Position)
		r := norm(delta)
		if r < 1.0 {
			// Softening: coincident bodies do not attract.
			continue
		}
		factor := G * body.Mass / (r * r * r)
		for i := 0; i < 3; i++ {
			acc[i] -= factor * delta[i]
		}
	}
	return acc
}
