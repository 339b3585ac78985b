package helio

import (
	"fmt"
	"math"
	"strings"
)

// CelestialObject defines a celestial object. All units are SI: the radius is
// in meters, the mass in kilograms, the heliocentric orbit radius in meters
// and the orbital velocity in m/s.
type CelestialObject struct {
	Name        string
	Radius      float64
	Mass        float64
	OrbitRadius float64
	OrbitVel    float64
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c *CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.Mass == b.Mass
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	for _, obj := range []CelestialObject{Sun, Mercury, Venus, Earth, Moon, Mars, Jupiter, Saturn, Uranus, Neptune} {
		if strings.EqualFold(obj.Name, name) {
			return obj, nil
		}
	}
	return CelestialObject{}, fmt.Errorf("undefined body '%s'", name)
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"sun", 696340e3, 1.989e30, 0, 0}

// Mercury is the smallest planet.
var Mercury = CelestialObject{"mercury", 2439.7e3, 3.3011e23, 57909050e3, 47362}

// Venus is poisonous.
var Venus = CelestialObject{"venus", 6051.8e3, 4.8675e24, 108208000e3, 35020}

// Earth is home.
var Earth = CelestialObject{"earth", 6371e3, 5.972e24, 149597870700, 29780}

// Moon orbits Earth, not the Sun; OrbitRadius is the Earth-Moon distance.
var Moon = CelestialObject{"moon", 1737.1e3, 7.34767309e22, 384400e3, 1022}

// Mars is the vacation place.
var Mars = CelestialObject{"mars", 3389.5e3, 6.4171e23, 227939200e3, 24077}

// Jupiter is big.
var Jupiter = CelestialObject{"jupiter", 69911e3, 1.8982e27, 778.57e9, 13070}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"saturn", 58232e3, 5.6834e26, 1433.53e9, 9680}

// Uranus is no joke.
var Uranus = CelestialObject{"uranus", 25362e3, 8.6810e25, 2872.46e9, 6800}

// Neptune is far.
var Neptune = CelestialObject{"neptune", 24622e3, 1.02413e26, 4495.06e9, 5430}

var planetNames = []string{"mercury", "venus", "earth", "mars", "jupiter", "saturn", "uranus", "neptune"}

// DominantBody returns the name of the body whose gravity dominates the given
// position, via a sphere of influence check: SOI ≈ d·(m/M)^(2/5) where d is
// the distance to the primary, m the body mass and M the primary mass.
// The moon is checked against its primary first, then each planet against the
// sun. Outside every SOI the sun wins; without a sun the earth is assumed.
func DominantBody(position []float64, bodies BodyMap) string {
	if moon, found := bodies["moon"]; found {
		if earth, foundEarth := bodies["earth"]; foundEarth {
			moonDist := norm(sub(position, moon.Position))
			earthMoonDist := norm(sub(moon.Position, earth.Position))
			moonSOI := earthMoonDist * math.Pow(moon.Mass/earth.Mass, 0.4)
			if moonDist < moonSOI {
				return "moon"
			}
		}
	}
	sun, found := bodies["sun"]
	if !found {
		if _, foundEarth := bodies["earth"]; foundEarth {
			return "earth"
		}
		return ""
	}
	dominant := ""
	minInfluence := math.MaxFloat64
	for _, name := range planetNames {
		planet, foundPlanet := bodies[name]
		if !foundPlanet {
			continue
		}
		planetDist := norm(sub(position, planet.Position))
		sunPlanetDist := norm(sub(planet.Position, sun.Position))
		planetSOI := sunPlanetDist * math.Pow(planet.Mass/sun.Mass, 0.4)
		if planetDist < planetSOI && planetDist < minInfluence {
			minInfluence = planetDist
			dominant = name
		}
	}
	if dominant == "" {
		return "sun"
	}
	return dominant
}
