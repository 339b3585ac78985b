package helio

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestNormUnit(t *testing.T) {
	v := []float64{3, 4, 0}
	if !floats.EqualWithinAbs(norm(v), 5, 1e-12) {
		t.Fatalf("norm([3 4 0]) = %f", norm(v))
	}
	u := unit(v)
	if !floats.EqualWithinAbs(norm(u), 1, 1e-12) {
		t.Fatalf("unit vector norm = %f", norm(u))
	}
	zero := unit([]float64{0, 0, 0})
	if !vectorsEqual(zero, []float64{0, 0, 0}) {
		t.Fatal("unit of zero vector must stay zero")
	}
}

func TestCross(t *testing.T) {
	x := []float64{1, 0, 0}
	y := []float64{0, 1, 0}
	if !vectorsEqual(cross(x, y), []float64{0, 0, 1}) {
		t.Fatal("x cross y != z")
	}
	if !vectorsEqual(cross(y, x), []float64{0, 0, -1}) {
		t.Fatal("y cross x != -z")
	}
}

func TestDotAddSubScale(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, -5, 6}
	if !floats.EqualWithinAbs(dot(a, b), 12, 1e-12) {
		t.Fatalf("dot = %f", dot(a, b))
	}
	if !vectorsEqual(add(a, b), []float64{5, -3, 9}) {
		t.Fatal("add failed")
	}
	if !vectorsEqual(sub(a, b), []float64{-3, 7, -3}) {
		t.Fatal("sub failed")
	}
	if !vectorsEqual(scale(2, a), []float64{2, 4, 6}) {
		t.Fatal("scale failed")
	}
}

func TestClamp11(t *testing.T) {
	if clamp11(1+1e-15) != 1 {
		t.Fatal("clamp above 1 failed")
	}
	if clamp11(-1.5) != -1 {
		t.Fatal("clamp below -1 failed")
	}
	if clamp11(0.5) != 0.5 {
		t.Fatal("clamp within range must be identity")
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	if !floats.EqualWithinAbs(Deg2rad(180), math.Pi, 1e-12) {
		t.Fatal("Deg2rad(180) != Pi")
	}
	if !floats.EqualWithinAbs(Rad2deg(math.Pi/2), 90, 1e-12) {
		t.Fatal("Rad2deg(Pi/2) != 90")
	}
}
