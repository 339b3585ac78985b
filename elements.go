package helio

import (
	"fmt"
	"math"
)

const (
	// G is the gravitational constant used by the elements calculator.
	G = 6.67430e-11
	// degenerateε is the threshold below which angular momentum, node vector
	// or eccentricity are treated as degenerate.
	degenerateε = 1e-10
)

// OrbitType classifies a trajectory from its eccentricity and periapsis.
type OrbitType uint8

const (
	// Suborbital orbits intersect the central body surface.
	Suborbital OrbitType = iota
	// Circular orbits have e ≈ 0.
	Circular
	// Elliptical orbits have 0 < e < 1.
	Elliptical
	// Parabolic orbits have near-zero specific energy.
	Parabolic
	// Hyperbolic orbits have e > 1.
	Hyperbolic
)

// String implements the Stringer interface.
func (t OrbitType) String() string {
	switch t {
	case Suborbital:
		return "Suborbital"
	case Circular:
		return "Circular"
	case Elliptical:
		return "Elliptical"
	case Parabolic:
		return "Parabolic"
	case Hyperbolic:
		return "Hyperbolic"
	}
	return "Unknown"
}

// OrbitalElements is an immutable snapshot of the classical Keplerian
// elements derived from one state vector. Distances are in meters, speeds in
// m/s and angles in degrees.
//
// Reference frame: central body at the origin, Y as the vertical reference
// axis (the renderer's convention, not the astrodynamics Z-up one).
type OrbitalElements struct {
	SemiMajorAxis            float64
	Eccentricity             float64
	Inclination              float64
	LongitudeOfAscendingNode float64
	ArgumentOfPeriapsis      float64
	TrueAnomaly              float64

	Periapsis         float64
	Apoapsis          float64 // +Inf for open orbits
	PeriapsisAltitude float64
	ApoapsisAltitude  float64
	OrbitalPeriod     float64 // seconds; NaN unless 0 ≤ e < 1 and a > 0
	MeanMotion        float64 // rad/s; NaN unless 0 ≤ e < 1 and a > 0
	Energy            float64 // specific orbital energy (J/kg)
	AngularMomentum   float64 // specific angular momentum magnitude (m²/s)

	Speed    float64
	Altitude float64
	Distance float64

	CentralBodyMass   float64
	CentralBodyRadius float64
	CentralBodyName   string

	Type OrbitType
}

// IsClosed returns whether the orbit is a closed ellipse.
func (e OrbitalElements) IsClosed() bool {
	return e.Eccentricity < 1 && e.Type != Suborbital
}

// CalculateElements derives the orbital elements from an instantaneous state
// vector relative to the central body. It is a pure function: degenerate
// states (near-zero angular momentum, node vector or eccentricity) fall back
// to the argument of latitude and finally to zero, never to an error.
func CalculateElements(position, velocity []float64, centralMass, centralRadius float64, centralName string) OrbitalElements {
	elements := OrbitalElements{
		CentralBodyMass:   centralMass,
		CentralBodyRadius: centralRadius,
		CentralBodyName:   centralName,
	}
	μ := G * centralMass

	r := norm(position)
	v := norm(velocity)
	elements.Distance = r
	elements.Speed = v
	elements.Altitude = r - centralRadius

	// Specific angular momentum h = r × v.
	h := cross(position, velocity)
	hMag := norm(h)
	elements.AngularMomentum = hMag

	// Specific orbital energy ε = v²/2 - μ/r.
	energy := v*v/2 - μ/r
	elements.Energy = energy

	// Eccentricity vector e = ((v² - μ/r)·r - (r·v)·v)/μ.
	rv := dot(position, velocity)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*position[i] - rv*velocity[i]) / μ
	}
	e := norm(eVec)
	elements.Eccentricity = e

	var a float64
	if math.Abs(energy) < degenerateε {
		a = math.Inf(1)
		elements.Type = Parabolic
	} else {
		a = -μ / (2 * energy)
		switch {
		case e < 0.01:
			elements.Type = Circular
		case e < 1:
			elements.Type = Elliptical
		case e > 1:
			elements.Type = Hyperbolic
		default:
			// e exactly 1 with non-zero energy, the radial degenerate.
			if energy < 0 {
				elements.Type = Elliptical
			} else {
				elements.Type = Hyperbolic
			}
		}
	}
	elements.SemiMajorAxis = a

	switch {
	case e < 1:
		elements.Periapsis = a * (1 - e)
		elements.Apoapsis = a * (1 + e)
	case e > 1:
		elements.Periapsis = a * (1 - e) // a is negative for an hyperbola
		elements.Apoapsis = math.Inf(1)
	default:
		elements.Periapsis = hMag * hMag / (2 * μ)
		elements.Apoapsis = math.Inf(1)
	}

	// A periapsis below the surface means impact, unless escaping.
	// NOTE: a hyperbolic flyby whose periapsis dips below the surface would
	// genuinely collide but keeps its Hyperbolic classification here.
	if elements.Periapsis < centralRadius && elements.Type != Hyperbolic {
		elements.Type = Suborbital
	}

	elements.PeriapsisAltitude = elements.Periapsis - centralRadius
	if math.IsInf(elements.Apoapsis, 1) {
		elements.ApoapsisAltitude = math.Inf(1)
	} else {
		elements.ApoapsisAltitude = elements.Apoapsis - centralRadius
	}

	if e < 1 && a > 0 {
		elements.OrbitalPeriod = 2 * math.Pi * math.Sqrt(a*a*a/μ)
		elements.MeanMotion = math.Sqrt(μ / (a * a * a))
	} else {
		elements.OrbitalPeriod = math.NaN()
		elements.MeanMotion = math.NaN()
	}

	// Inclination against the vertical reference axis.
	if hMag > degenerateε {
		elements.Inclination = Rad2deg(math.Acos(clamp11(h[1] / hMag)))
	}

	// Node vector n = ŷ × h.
	n := cross([]float64{0, 1, 0}, h)
	nMag := norm(n)
	if nMag > degenerateε {
		Ω := Rad2deg(math.Acos(clamp11(n[0] / nMag)))
		if n[2] < 0 {
			Ω = 360 - Ω
		}
		elements.LongitudeOfAscendingNode = Ω
	}

	if nMag > degenerateε && e > degenerateε {
		ω := Rad2deg(math.Acos(clamp11(dot(n, eVec) / (nMag * e))))
		if eVec[1] < 0 {
			ω = 360 - ω
		}
		elements.ArgumentOfPeriapsis = ω
	}

	if e > degenerateε {
		ν := Rad2deg(math.Acos(clamp11(dot(eVec, position) / (e * r))))
		if rv < 0 {
			ν = 360 - ν
		}
		elements.TrueAnomaly = ν
	} else if nMag > degenerateε {
		// Circular orbit: fall back to the argument of latitude.
		u := Rad2deg(math.Acos(clamp11(dot(n, position) / (nMag * r))))
		if position[1] < 0 {
			u = 360 - u
		}
		elements.TrueAnomaly = u
	}

	return elements
}

/* Presentation helpers, not part of the numeric contract. */

// FormatDistance formats a distance in the most appropriate unit.
func FormatDistance(meters float64) string {
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return "N/A"
	}
	abs := math.Abs(meters)
	prefix := ""
	if meters < 0 {
		prefix = "-"
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%s%.3f AU", prefix, abs/1.496e11)
	case abs >= 1e9:
		return fmt.Sprintf("%s%.2f Gm", prefix, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s%.2f Mm", prefix, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s%.2f km", prefix, abs/1e3)
	}
	return fmt.Sprintf("%s%.1f m", prefix, abs)
}

// FormatSpeed formats a speed in km/s or m/s.
func FormatSpeed(mps float64) string {
	if math.Abs(mps) >= 1000 {
		return fmt.Sprintf("%.3f km/s", mps/1000)
	}
	return fmt.Sprintf("%.1f m/s", mps)
}

// FormatDuration formats a duration in days, hours, minutes and seconds.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "N/A"
	}
	days := int(seconds / 86400)
	seconds -= float64(days) * 86400
	hours := int(seconds / 3600)
	seconds -= float64(hours) * 3600
	minutes := int(seconds / 60)
	seconds -= float64(minutes) * 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %.0fs", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %.1fs", minutes, seconds)
	}
	return fmt.Sprintf("%.1fs", seconds)
}
