package helio

import (
	"math"

	kitlog "github.com/go-kit/kit/log"
)

const (
	minTimeScale = 0.1
	maxTimeScale = 1e6
	// Multiplicative time scale stepping kicks in above this value.
	timeScaleStepThreshold = 100
)

// Simulation owns the solar system state, the vehicle and the shared octree,
// and advances everything by one tick per Update call. All methods must be
// called from a single goroutine.
type Simulation struct {
	Rocket    *Rocket
	Bodies    BodyMap
	Tree      *Octree
	TimeScale float64

	cfg      Config
	logger   kitlog.Logger
	elapsed  float64
	histChan chan<- State
}

// NewSimulation builds the solar system, seeds the rocket on the surface of
// the Earth and returns a ready simulation.
func NewSimulation(cfg Config, logger kitlog.Logger, plan *FlightPlan) *Simulation {
	if logger == nil {
		panic("simulation logger may not be nil")
	}
	bodies := NewSolarSystem()
	rocket := NewRocket(cfg, logger, plan)
	earth := bodies[Earth.Name]
	rocket.Position = add(earth.Position, []float64{0, Earth.Radius, 0})
	rocket.Velocity = append([]float64{}, earth.Velocity...)

	sim := &Simulation{
		Rocket:    rocket,
		Bodies:    bodies,
		Tree:      NewOctree(cfg.Theta, cfg.Softening),
		TimeScale: 1,
		cfg:       cfg,
		logger:    logger,
	}
	sim.rebuildTree()
	return sim
}

// NewSolarSystem returns the sun, the planets and the Moon with circular
// coplanar starting orbits, the Moon inclined by its 5.145 degree tilt.
func NewSolarSystem() BodyMap {
	bodies := make(BodyMap)
	bodies[Sun.Name] = NewBody(Sun.Name, Sun.Mass, []float64{0, 0, 0}, []float64{0, 0, 0})
	for _, name := range planetNames {
		obj, err := CelestialObjectFromString(name)
		if err != nil {
			panic(err)
		}
		bodies[obj.Name] = NewBody(obj.Name, obj.Mass, []float64{obj.OrbitRadius, 0, 0}, []float64{0, 0, obj.OrbitVel})
	}
	// The Moon orbits the Earth, inclined to the ecliptic.
	earth := bodies[Earth.Name]
	incl := 5.145 * deg2rad
	moonPos := add(earth.Position, []float64{0, Moon.OrbitRadius * math.Sin(incl), Moon.OrbitRadius * math.Cos(incl)})
	moonVel := add(earth.Velocity, []float64{-Moon.OrbitVel, 0, 0})
	bodies[Moon.Name] = NewBody(Moon.Name, Moon.Mass, moonPos, moonVel)
	return bodies
}

// Elapsed returns the simulated seconds since the start.
func (s *Simulation) Elapsed() float64 { return s.elapsed }

// SetStateChan registers a channel receiving one State per tick, e.g. for
// StreamStates.
func (s *Simulation) SetStateChan(ch chan<- State) { s.histChan = ch }

// SetTimeScale sets the time scale, clamped to the supported range.
func (s *Simulation) SetTimeScale(scale float64) {
	s.TimeScale = math.Min(maxTimeScale, math.Max(minTimeScale, scale))
	s.logger.Log("level", "info", "subsys", "sim", "timescale", s.TimeScale)
}

// AdjustTimeScale nudges the time scale up or down. Below the threshold it
// steps additively, above it multiplicatively, so both slow-motion and
// interplanetary rates stay reachable in a few presses.
func (s *Simulation) AdjustTimeScale(faster bool) {
	scale := s.TimeScale
	if faster {
		if scale >= timeScaleStepThreshold {
			scale *= 10
		} else {
			scale += 1
		}
	} else {
		if scale > timeScaleStepThreshold {
			scale /= 10
		} else {
			scale -= 1
		}
	}
	s.SetTimeScale(scale)
}

// Update advances the whole system by dt seconds of wall time, scaled by the
// current time scale. Planets move under velocity Verlet with direct
// summation; the rocket steps afterwards against the freshly rebuilt octree.
func (s *Simulation) Update(dt float64) {
	h := dt * s.TimeScale
	if h <= 0 {
		return
	}
	s.elapsed += h

	// The planets use direct summation rather than the octree: a handful of
	// bodies gains nothing from the tree, and the monopole approximation
	// would alias the Moon into the Earth at typical opening angles.
	accs := make(map[string][]float64, len(s.Bodies))
	for name, body := range s.Bodies {
		accs[name] = DirectSum{Bodies: s.Bodies, Skip: name}.ComputeAcceleration(body.Position, s.cfg.GravityConstant)
	}
	for name, body := range s.Bodies {
		a := accs[name]
		for i := 0; i < 3; i++ {
			body.Position[i] += body.Velocity[i]*h + 0.5*a[i]*h*h
		}
	}
	for name, body := range s.Bodies {
		aNew := DirectSum{Bodies: s.Bodies, Skip: name}.ComputeAcceleration(body.Position, s.cfg.GravityConstant)
		aOld := accs[name]
		for i := 0; i < 3; i++ {
			body.Velocity[i] += 0.5 * (aOld[i] + aNew[i]) * h
		}
		if math.IsNaN(body.Position[0]) || math.IsNaN(body.Velocity[0]) {
			s.logger.Log("level", "critical", "subsys", "astro", "body", name, "err", "state diverged to NaN")
		}
	}

	s.rebuildTree()
	s.Rocket.Update(h, s.Bodies, s.Tree)

	if s.histChan != nil {
		s.histChan <- s.snapshot()
	}
}

// rebuildTree rebuilds the shared octree from the current body positions,
// reusing its node storage.
func (s *Simulation) rebuildTree() {
	entries := make([]OctreeBody, 0, len(s.Bodies))
	for _, body := range s.Bodies {
		entries = append(entries, OctreeBody{Position: body.Position, Mass: body.Mass, Name: body.Name})
	}
	s.Tree.Build(entries)
}

func (s *Simulation) snapshot() State {
	st := State{
		Elapsed:  s.elapsed,
		Position: append([]float64{}, s.Rocket.Position...),
		Velocity: append([]float64{}, s.Rocket.Velocity...),
		FuelMass: s.Rocket.FuelMass,
		Launched: s.Rocket.Launched,
	}
	st.DominantBody = DominantBody(s.Rocket.Position, s.Bodies)
	if central, found := s.Bodies[st.DominantBody]; found {
		if obj, err := CelestialObjectFromString(central.Name); err == nil {
			elements := CalculateElements(sub(s.Rocket.Position, central.Position),
				sub(s.Rocket.Velocity, central.Velocity), obj.Mass, obj.Radius, obj.Name)
			st.OrbitType = elements.Type.String()
		}
	}
	return st
}
