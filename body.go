package helio

// Body defines a point mass of the simulation. It is owned by the Simulation
// and mutated every tick.
type Body struct {
	Name     string
	Mass     float64   // kg
	Position []float64 // m
	Velocity []float64 // m/s
}

// NewBody returns a body from its initial state.
func NewBody(name string, mass float64, position, velocity []float64) *Body {
	return &Body{name, mass, position, velocity}
}

// BodyMap is the name-keyed registry of simulation bodies, refreshed each tick.
type BodyMap map[string]*Body
