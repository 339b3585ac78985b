package helio

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinRel(a[i], b[i], 1e-3) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles in degrees are equal.
func anglesEqual(a, b float64) bool {
	diff := math.Mod(math.Abs(a-b), 360)
	return diff < 1e-4 || 360-diff < 1e-4
}
