package helio

import (
	"math"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
)

const (
	// atmosphereCutoff is the altitude above which drag is ignored.
	atmosphereCutoff = 100e3
	// coarse thresholds for the prediction step size.
	coarseAltitude  = 100e3
	coarserAltitude = 1000e3
)

// Rocket is the powered vehicle. Its live state is exclusively owned and
// mutated by Update; the prediction pass always operates on a disjoint copy.
type Rocket struct {
	Position        []float64 // m
	Velocity        []float64 // m/s
	Mass            float64   // kg, wet
	FuelMass        float64   // kg
	Thrust          float64   // N
	ThrustDirection []float64 // unit vector
	ExhaustVelocity float64   // m/s
	Launched        bool

	flightPlan *FlightPlan
	cfg        Config
	logger     kitlog.Logger
	time       float64

	// Prediction throttling: refresh on a fixed interval, and only when the
	// state drifted since the last pass.
	predictionTimer float64
	prediction      [][]float64
	lastPredPos     []float64
	lastPredVel     []float64
	lastPredThrust  float64
	lastPredFuel    float64
}

// NewRocket returns a rocket configured from cfg, with no position yet.
func NewRocket(cfg Config, logger kitlog.Logger, plan *FlightPlan) *Rocket {
	if logger == nil {
		panic("rocket logger may not be nil")
	}
	if plan == nil {
		panic("rocket flight plan may not be nil")
	}
	if cfg.PredictionMaxPoints <= 0 {
		panic("config PredictionMaxPoints must be positive")
	}
	return &Rocket{
		Position:        []float64{0, 0, 0},
		Velocity:        []float64{0, 0, 0},
		Mass:            cfg.RocketMass,
		FuelMass:        cfg.RocketFuelMass,
		Thrust:          cfg.RocketThrust,
		ThrustDirection: []float64{0, 1, 0},
		ExhaustVelocity: cfg.RocketExhaustVelocity,
		flightPlan:      plan,
		cfg:             cfg,
		logger:          logger,
	}
}

// ToggleLaunch flips the launched state; landing back resets the clock.
func (r *Rocket) ToggleLaunch() {
	r.Launched = !r.Launched
	if !r.Launched {
		r.time = 0
	}
}

// Time returns the seconds of powered simulation since launch.
func (r *Rocket) Time() float64 { return r.time }

// Prediction returns the point buffer of the last prediction pass.
func (r *Rocket) Prediction() [][]float64 { return r.prediction }

// SetThrustDirection normalizes and sets the thrust direction.
func (r *Rocket) SetThrustDirection(direction []float64) {
	r.ThrustDirection = unit(direction)
}

// Update advances the rocket state by one timestep under gravity, thrust and
// drag, using the octree when provided and direct summation otherwise. After
// a successful step the flight plan is consulted for the next thrust setting.
func (r *Rocket) Update(dt float64, bodies BodyMap, tree *Octree) {
	if !r.Launched || dt <= 0 {
		return
	}
	r.time += dt

	r.predictionTimer += dt
	if r.predictionTimer >= r.cfg.PredictionInterval {
		r.predictionTimer = 0
		if r.needsPredictionUpdate() {
			r.PredictTrajectory(r.cfg.PredictionDuration, r.cfg.PredictionStep, bodies, tree)
		}
	}

	prop := r.newPropagation(dt, bodies, tree)
	ode.NewRK4(0, dt, prop).Solve()

	r.Position = prop.position
	r.Velocity = prop.velocity
	r.Mass = prop.mass
	r.FuelMass = prop.fuel

	if prop.collided {
		r.logger.Log("level", "critical", "subsys", "astro", "collided", prop.referenceName, "r", norm(sub(r.Position, prop.referencePos)), "radius", prop.referenceRadius)
		r.Launched = false
		return
	}

	if prop.referenceRadius > 0 {
		altitude := norm(sub(r.Position, prop.referencePos)) - prop.referenceRadius
		speed := norm(r.Velocity)
		if action, found := r.flightPlan.GetAction(altitude, speed); found {
			r.Thrust = action.Thrust
			r.ThrustDirection = unit(action.Direction)
		}
	}
}

// PredictTrajectory integrates a copy of the current state for the given
// duration and populates the prediction point buffer, without ever touching
// the live state. The step size coarsens with altitude (×2 above 100 km, ×5
// above 1000 km) and the output is capped at PredictionMaxPoints.
func (r *Rocket) PredictTrajectory(duration, step float64, bodies BodyMap, tree *Octree) [][]float64 {
	prop := r.newPropagation(duration, bodies, tree)
	prop.baseStep = step
	prop.points = make([][]float64, 0, r.cfg.PredictionMaxPoints)
	prop.maxPoints = r.cfg.PredictionMaxPoints

	rk := ode.NewRK4(0, step, prop)
	prop.rk = rk
	rk.Solve()

	r.prediction = prop.points
	r.lastPredPos = append([]float64{}, r.Position...)
	r.lastPredVel = append([]float64{}, r.Velocity...)
	r.lastPredThrust = r.Thrust
	r.lastPredFuel = r.FuelMass
	return prop.points
}

// needsPredictionUpdate reports whether the state drifted enough since the
// last prediction to warrant recomputing it.
func (r *Rocket) needsPredictionUpdate() bool {
	if r.lastPredPos == nil {
		return true
	}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(r.Position[i], r.lastPredPos[i], 1.0) {
			return true
		}
		if !floats.EqualWithinAbs(r.Velocity[i], r.lastPredVel[i], 0.1) {
			return true
		}
	}
	return !floats.EqualWithinAbs(r.Thrust, r.lastPredThrust, 1e-6) ||
		!floats.EqualWithinAbs(r.FuelMass, r.lastPredFuel, 1.0)
}

// newPropagation snapshots the rocket state into an integrable propagation.
func (r *Rocket) newPropagation(duration float64, bodies BodyMap, tree *Octree) *propagation {
	var field GravitySource
	if tree != nil && tree.IsBuilt() {
		field = tree
	} else {
		field = DirectSum{Bodies: bodies}
	}
	prop := &propagation{
		position:   append([]float64{}, r.Position...),
		velocity:   append([]float64{}, r.Velocity...),
		mass:       r.Mass,
		fuel:       r.FuelMass,
		thrust:     r.Thrust,
		thrustDir:  append([]float64{}, r.ThrustDirection...),
		exhaustVel: r.ExhaustVelocity,
		field:      field,
		cfg:        &r.cfg,
		duration:   duration,
	}
	prop.stepMass = prop.mass
	if reference, found := bodies[DominantBody(r.Position, bodies)]; found {
		if obj, err := CelestialObjectFromString(reference.Name); err == nil {
			prop.referenceName = reference.Name
			prop.referencePos = reference.Position
			prop.referenceVel = reference.Velocity
			prop.referenceRadius = obj.Radius
		}
	}
	return prop
}

// propagation advances one vehicle state under combined multi-body gravity,
// thrust and atmospheric drag. It implements ode.Integrable with the state
// vector [x y z vx vy vz fuel]; SetState carries the per-full-step semantics:
// fuel burn and clamping, the surface collision clamp, prediction point
// recording and altitude-adaptive step coarsening.
type propagation struct {
	position  []float64
	velocity  []float64
	mass      float64
	fuel      float64
	thrust    float64
	thrustDir []float64

	exhaustVel float64
	field      GravitySource
	cfg        *Config

	referenceName   string
	referencePos    []float64
	referenceVel    []float64
	referenceRadius float64

	// stepMass is held constant through the four RK substages of one step.
	stepMass float64

	elapsed  float64
	duration float64
	collided bool

	// Prediction only.
	rk        *ode.RK4
	baseStep  float64
	points    [][]float64
	maxPoints int
}

// GetState implements the ode.Integrable interface.
func (p *propagation) GetState() []float64 {
	return []float64{
		p.position[0], p.position[1], p.position[2],
		p.velocity[0], p.velocity[1], p.velocity[2],
		p.fuel,
	}
}

// Func implements the ode.Integrable interface.
func (p *propagation) Func(t float64, s []float64) []float64 {
	pos := s[0:3]
	vel := s[3:6]
	acc := p.accelAt(pos, vel)
	return []float64{
		vel[0], vel[1], vel[2],
		acc[0], acc[1], acc[2],
		-p.burnRate(),
	}
}

// accelAt returns the acceleration at an arbitrary substage state: gravity
// from the selected source, thrust while fuel remains, and drag below the
// atmosphere cutoff relative to the reference body.
func (p *propagation) accelAt(pos, vel []float64) []float64 {
	acc := p.field.ComputeAcceleration(pos, p.cfg.GravityConstant)

	if p.fuel > 0 && p.stepMass > 0 {
		factor := p.thrust / p.stepMass
		for i := 0; i < 3; i++ {
			acc[i] += factor * p.thrustDir[i]
		}
	}

	if p.referenceRadius > 0 {
		altitude := norm(sub(pos, p.referencePos)) - p.referenceRadius
		if altitude < atmosphereCutoff {
			ρ := p.cfg.AirDensity * math.Exp(-altitude/p.cfg.ScaleHeight)
			relVel := sub(vel, p.referenceVel)
			vMag := norm(relVel)
			if vMag > 0 && p.stepMass > 0 {
				drag := 0.5 * ρ * p.cfg.DragCoefficient * p.cfg.CrossSectionArea * vMag * vMag / p.stepMass
				for i := 0; i < 3; i++ {
					acc[i] -= drag * relVel[i] / vMag
				}
			}
		}
	}
	return acc
}

// burnRate returns the fuel mass flow, Δfuel/Δt = thrust/exhaustVelocity.
// The gating uses the fuel at step start so the burn applies once per full
// step rather than per RK substage.
func (p *propagation) burnRate() float64 {
	if p.thrust <= 0 || p.fuel <= 0 || p.exhaustVel <= 0 {
		return 0
	}
	return p.thrust / p.exhaustVel
}

// SetState implements the ode.Integrable interface.
func (p *propagation) SetState(t float64, s []float64) {
	stepUsed := p.duration
	if p.rk != nil {
		stepUsed = p.rk.StepSize
	}
	p.elapsed += stepUsed

	p.position = []float64{s[0], s[1], s[2]}
	p.velocity = []float64{s[3], s[4], s[5]}

	// Fuel and mass floor at zero and never increase.
	newFuel := math.Max(0, s[6])
	if burned := p.fuel - newFuel; burned > 0 {
		p.mass = math.Max(0, p.mass-burned)
	}
	p.fuel = newFuel
	p.stepMass = p.mass

	// Surface collision: clamp onto the reference body along the radial
	// direction and kill the velocity.
	if p.referenceRadius > 0 {
		rel := sub(p.position, p.referencePos)
		if norm(rel) < p.referenceRadius {
			p.position = add(p.referencePos, scale(p.referenceRadius, unit(rel)))
			p.velocity = []float64{0, 0, 0}
			p.collided = true
			return
		}
	}

	if p.points != nil && len(p.points) < p.maxPoints {
		p.points = append(p.points, append([]float64{}, p.position...))
	}

	// Coarsen the prediction step with altitude.
	if p.rk != nil && p.referenceRadius > 0 {
		altitude := norm(sub(p.position, p.referencePos)) - p.referenceRadius
		step := p.baseStep
		if altitude > coarserAltitude {
			step = p.baseStep * 5
		} else if altitude > coarseAltitude {
			step = p.baseStep * 2
		}
		p.rk.StepSize = step
	}
}

// Stop implements the ode.Integrable interface.
func (p *propagation) Stop(t float64) bool {
	if p.collided {
		return true
	}
	if p.maxPoints > 0 && len(p.points) >= p.maxPoints {
		return true
	}
	return p.elapsed >= p.duration-1e-9
}
