package helio

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gonum/floats"
)

func randomBodies(n int, rng *rand.Rand) []OctreeBody {
	bodies := make([]OctreeBody, n)
	for i := range bodies {
		bodies[i] = OctreeBody{
			Position: []float64{rng.Float64()*2e11 - 1e11, rng.Float64()*2e11 - 1e11, rng.Float64()*2e11 - 1e11},
			Mass:     rng.Float64() * 1e24,
		}
	}
	return bodies
}

func directAccel(bodies []OctreeBody, pos []float64, G float64) []float64 {
	acc := []float64{0, 0, 0}
	for _, body := range bodies {
		delta := sub(body.Position, pos)
		dist := norm(delta)
		if dist < 1e-6 {
			continue
		}
		factor := G * body.Mass / (dist * dist * dist)
		for i := 0; i < 3; i++ {
			acc[i] += factor * delta[i]
		}
	}
	return acc
}

func TestOctreeUnbuilt(t *testing.T) {
	tree := NewOctree(defaultTheta, 0)
	if tree.IsBuilt() {
		t.Fatal("fresh tree must not be built")
	}
	if !vectorsEqual(tree.ComputeAcceleration([]float64{1, 2, 3}, G), []float64{0, 0, 0}) {
		t.Fatal("unbuilt tree must return zero acceleration")
	}
	if tree.NodeCount() != 0 || tree.BodyCount() != 0 {
		t.Fatal("unbuilt tree must report zero counts")
	}
	tree.Build(nil)
	if tree.IsBuilt() {
		t.Fatal("building with no bodies must leave the tree unbuilt")
	}
}

func TestOctreeAggregates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bodies := randomBodies(50, rng)
	tree := NewOctree(defaultTheta, 0)
	tree.Build(bodies)
	if tree.BodyCount() != 50 {
		t.Fatalf("got %d bodies, expected 50", tree.BodyCount())
	}
	var totalMass float64
	com := []float64{0, 0, 0}
	for _, body := range bodies {
		totalMass += body.Mass
		for i := 0; i < 3; i++ {
			com[i] += body.Mass * body.Position[i]
		}
	}
	for i := 0; i < 3; i++ {
		com[i] /= totalMass
	}
	root := tree.nodes[0]
	if !floats.EqualWithinRel(root.totalMass, totalMass, 1e-12) {
		t.Fatalf("root mass %e, expected %e", root.totalMass, totalMass)
	}
	if !vectorsEqual(root.com[:], com) {
		t.Fatalf("root com %v, expected %v", root.com, com)
	}
}

func TestOctreeThetaZeroMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bodies := randomBodies(100, rng)
	tree := NewOctree(0, 0)
	tree.Build(bodies)
	for trial := 0; trial < 10; trial++ {
		pos := []float64{rng.Float64()*2e11 - 1e11, rng.Float64()*2e11 - 1e11, rng.Float64()*2e11 - 1e11}
		got := tree.ComputeAcceleration(pos, G)
		expected := directAccel(bodies, pos, G)
		for i := 0; i < 3; i++ {
			if !floats.EqualWithinRel(got[i], expected[i], 1e-9) {
				t.Fatalf("trial %d axis %d: got %e, direct %e", trial, i, got[i], expected[i])
			}
		}
	}
}

func TestOctreeApproximationAccuracy(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	bodies := randomBodies(200, rng)
	tree := NewOctree(defaultTheta, 0)
	tree.Build(bodies)
	pos := []float64{1.5e11, 0, 0}
	got := tree.ComputeAcceleration(pos, G)
	expected := directAccel(bodies, pos, G)
	relErr := norm(sub(got, expected)) / norm(expected)
	if relErr > 0.01 {
		t.Fatalf("theta %.1f relative error %e exceeds 1%%", defaultTheta, relErr)
	}
}

func TestOctreeSetTheta(t *testing.T) {
	// Lowering the opening angle at runtime tightens the already built tree:
	// at theta 0 the next query degrades to exact direct summation.
	rng := rand.New(rand.NewSource(11))
	bodies := randomBodies(80, rng)
	tree := NewOctree(1.0, 0)
	if tree.Theta() != 1.0 {
		t.Fatalf("theta = %f after construction", tree.Theta())
	}
	tree.Build(bodies)
	pos := []float64{1.5e11, 2e10, -3e10}
	coarse := tree.ComputeAcceleration(pos, G)

	tree.SetTheta(0)
	if tree.Theta() != 0 {
		t.Fatalf("theta = %f after SetTheta", tree.Theta())
	}
	exact := tree.ComputeAcceleration(pos, G)
	expected := directAccel(bodies, pos, G)
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinRel(exact[i], expected[i], 1e-9) {
			t.Fatalf("axis %d: got %e, direct %e", i, exact[i], expected[i])
		}
	}
	if norm(sub(coarse, exact)) == 0 {
		t.Fatal("the opening angle must change the approximation")
	}
}

func TestOctreeCoincidentBodies(t *testing.T) {
	// Two bodies at the numerically same position must not recurse forever
	// and both must contribute to the far field.
	bodies := []OctreeBody{
		{Position: []float64{0, 0, 0}, Mass: 1e24},
		{Position: []float64{0, 0, 0}, Mass: 1e24},
		{Position: []float64{1e10, 0, 0}, Mass: 1e20},
	}
	tree := NewOctree(defaultTheta, 0)
	tree.Build(bodies)
	if tree.BodyCount() != 3 {
		t.Fatalf("got %d bodies, expected 3", tree.BodyCount())
	}
	got := tree.ComputeAcceleration([]float64{5e10, 0, 0}, G)
	expected := directAccel(bodies, []float64{5e10, 0, 0}, G)
	if !vectorsEqual(got, expected) {
		t.Fatalf("got %v, direct %v", got, expected)
	}
}

func TestOctreeSelfQuery(t *testing.T) {
	// Querying from a body's own position must not blow up: the softened
	// distance test skips the query body itself.
	bodies := []OctreeBody{
		{Position: []float64{0, 0, 0}, Mass: 1e24},
		{Position: []float64{1e10, 0, 0}, Mass: 1e24},
	}
	tree := NewOctree(defaultTheta, 0)
	tree.Build(bodies)
	acc := tree.ComputeAcceleration([]float64{0, 0, 0}, G)
	for i := 0; i < 3; i++ {
		if math.IsNaN(acc[i]) || math.IsInf(acc[i], 0) {
			t.Fatalf("self query produced non-finite acceleration %v", acc)
		}
	}
	if acc[0] <= 0 {
		t.Fatal("acceleration must point toward the other body")
	}
}

func TestOctreeStorageReuse(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	bodies := randomBodies(64, rng)
	tree := NewOctree(defaultTheta, 0)
	tree.Build(bodies)
	firstNodes := tree.NodeCount()
	firstCap := cap(tree.nodes)
	tree.Build(bodies)
	if tree.NodeCount() != firstNodes {
		t.Fatalf("rebuild produced %d nodes, expected %d", tree.NodeCount(), firstNodes)
	}
	if cap(tree.nodes) != firstCap {
		t.Fatal("rebuild must reuse the node arena")
	}
}

func TestOctreeSingleBody(t *testing.T) {
	tree := NewOctree(defaultTheta, 0)
	tree.Build([]OctreeBody{{Position: []float64{1, 2, 3}, Mass: 5.972e24}})
	if tree.NodeCount() != 1 {
		t.Fatalf("single body tree has %d nodes", tree.NodeCount())
	}
	got := tree.ComputeAcceleration([]float64{1, 2, 3 + 6.371e6}, G)
	expected := directAccel([]OctreeBody{{Position: []float64{1, 2, 3}, Mass: 5.972e24}}, []float64{1, 2, 3 + 6.371e6}, G)
	if !vectorsEqual(got, expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
}
