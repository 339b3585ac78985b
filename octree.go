package helio

import (
	"math"
)

const (
	// maxOctreeDepth bounds the subdivision depth so that two bodies at the
	// numerically same position cannot recurse forever.
	maxOctreeDepth = 40
	// defaultTheta is the usual accuracy/speed balance for Barnes-Hut.
	defaultTheta = 0.5
	// defaultSoftening floors the distance in the gravity denominator.
	defaultSoftening = 1e-6
)

// OctreeBody is a lightweight snapshot of a body inserted into the tree. It
// carries no reference to the owning Body: the tree never outlives one tick.
type OctreeBody struct {
	Position []float64
	Mass     float64
	Name     string
}

type nodeState uint8

const (
	stateEmpty nodeState = iota
	stateLeaf
	stateInternal
)

// octreeNode is one cubic region of space in the arena. Children are indices
// into the arena, -1 when absent.
type octreeNode struct {
	center    [3]float64
	halfSize  float64
	com       [3]float64
	totalMass float64
	bodyCount int
	depth     int
	state     nodeState
	body      OctreeBody
	children  [8]int32
}

// Octree is a Barnes-Hut octree for N-body gravity, reducing the O(n²)
// direct summation to O(n log n). Nodes live in an index-addressed arena
// whose storage is reused across builds.
//
// The opening angle theta controls accuracy: 0 is exact direct summation,
// 0.5 the typical balance, 1 an aggressive approximation.
type Octree struct {
	theta     float64
	softening float64
	nodes     []octreeNode
	built     bool
}

// NewOctree returns an octree with the given opening angle and softening
// length. A non-positive softening falls back to the default.
func NewOctree(theta, softening float64) *Octree {
	if softening <= 0 {
		softening = defaultSoftening
	}
	return &Octree{theta: theta, softening: softening}
}

// SetTheta sets the opening angle.
func (t *Octree) SetTheta(theta float64) { t.theta = theta }

// Theta returns the opening angle.
func (t *Octree) Theta() float64 { return t.theta }

// IsBuilt returns whether the tree currently holds any bodies.
func (t *Octree) IsBuilt() bool { return t.built }

// Build rebuilds the tree from scratch from the provided bodies, discarding
// the previous tree. The bounding cube is computed so that no body lies
// exactly on a boundary.
func (t *Octree) Build(bodies []OctreeBody) {
	t.nodes = t.nodes[:0]
	t.built = false
	if len(bodies) == 0 {
		return
	}
	center, halfSize := octreeBounds(bodies)
	t.newNode(center, halfSize, 0)
	for _, body := range bodies {
		t.insert(0, body)
	}
	t.built = true
}

// ComputeAcceleration returns the gravitational acceleration at the given
// position using the Barnes-Hut approximation. Querying an unbuilt tree
// returns the zero vector.
func (t *Octree) ComputeAcceleration(position []float64, G float64) []float64 {
	if !t.built {
		return []float64{0, 0, 0}
	}
	pos := [3]float64{position[0], position[1], position[2]}
	acc := t.accel(0, pos, G)
	return []float64{acc[0], acc[1], acc[2]}
}

// NodeCount returns the number of nodes via a full traversal.
func (t *Octree) NodeCount() int {
	if !t.built {
		return 0
	}
	return t.countNodes(0)
}

// BodyCount returns the number of bodies held by the tree.
func (t *Octree) BodyCount() int {
	if !t.built {
		return 0
	}
	return t.nodes[0].bodyCount
}

// octreeBounds returns the center and half size of a cube enclosing every
// body, with a margin so no position sits exactly on the boundary.
func octreeBounds(bodies []OctreeBody) (center [3]float64, halfSize float64) {
	var minP, maxP [3]float64
	for i := 0; i < 3; i++ {
		minP[i] = math.MaxFloat64
		maxP[i] = -math.MaxFloat64
	}
	for _, body := range bodies {
		for i := 0; i < 3; i++ {
			minP[i] = math.Min(minP[i], body.Position[i])
			maxP[i] = math.Max(maxP[i], body.Position[i])
		}
	}
	for i := 0; i < 3; i++ {
		center[i] = (minP[i] + maxP[i]) / 2
		halfSize = math.Max(halfSize, (maxP[i]-minP[i])/2)
	}
	halfSize *= 1.01
	halfSize = math.Max(halfSize, 1.0)
	return
}

// newNode appends a node to the arena and returns its index.
func (t *Octree) newNode(center [3]float64, halfSize float64, depth int) int32 {
	n := octreeNode{center: center, halfSize: halfSize, depth: depth}
	for i := range n.children {
		n.children[i] = -1
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

// octant returns the 3-bit child index for a position from the sign of
// (position - center) along each axis.
func (n *octreeNode) octant(pos []float64) int {
	oct := 0
	if pos[0] >= n.center[0] {
		oct |= 4
	}
	if pos[1] >= n.center[1] {
		oct |= 2
	}
	if pos[2] >= n.center[2] {
		oct |= 1
	}
	return oct
}

// subdivide allocates the eight children of a node and marks it internal.
// Appending to the arena may move it, so the parent is re-resolved by index.
func (t *Octree) subdivide(ni int32) {
	center := t.nodes[ni].center
	quarter := t.nodes[ni].halfSize / 2
	depth := t.nodes[ni].depth
	for oct := 0; oct < 8; oct++ {
		childCenter := center
		if oct&4 != 0 {
			childCenter[0] += quarter
		} else {
			childCenter[0] -= quarter
		}
		if oct&2 != 0 {
			childCenter[1] += quarter
		} else {
			childCenter[1] -= quarter
		}
		if oct&1 != 0 {
			childCenter[2] += quarter
		} else {
			childCenter[2] -= quarter
		}
		ci := t.newNode(childCenter, quarter, depth+1)
		t.nodes[ni].children[oct] = ci
	}
	t.nodes[ni].state = stateInternal
}

func (t *Octree) insert(ni int32, body OctreeBody) {
	n := &t.nodes[ni]
	// Aggregate mass and center of mass are updated regardless of state, so
	// any internal node always equals the mass-weighted sum of its leaves.
	newTotal := n.totalMass + body.Mass
	if newTotal > 0 {
		for i := 0; i < 3; i++ {
			n.com[i] = (n.totalMass*n.com[i] + body.Mass*body.Position[i]) / newTotal
		}
	}
	n.totalMass = newTotal
	n.bodyCount++

	switch n.state {
	case stateEmpty:
		n.body = body
		n.state = stateLeaf
	case stateLeaf:
		if n.depth >= maxOctreeDepth {
			// Bodies at the same position: keep aggregating, stop subdividing.
			return
		}
		existing := n.body
		n.body = OctreeBody{}
		t.subdivide(ni) // invalidates n
		t.insert(t.childOf(ni, existing.Position), existing)
		t.insert(t.childOf(ni, body.Position), body)
	case stateInternal:
		t.insert(t.childOf(ni, body.Position), body)
	}
}

func (t *Octree) childOf(ni int32, pos []float64) int32 {
	n := &t.nodes[ni]
	return n.children[n.octant(pos)]
}

func (t *Octree) accel(ni int32, pos [3]float64, G float64) (acc [3]float64) {
	n := &t.nodes[ni]
	if n.bodyCount == 0 {
		return
	}
	var delta [3]float64
	distSq := 0.0
	for i := 0; i < 3; i++ {
		delta[i] = n.com[i] - pos[i]
		distSq += delta[i] * delta[i]
	}
	dist := math.Sqrt(distSq)

	if dist < t.softening {
		// Query position at the center of mass: a leaf here is the query
		// body itself, an internal node needs its children resolved.
		if n.state != stateInternal {
			return
		}
		for _, ci := range n.children {
			sum := t.accel(ci, pos, G)
			for i := 0; i < 3; i++ {
				acc[i] += sum[i]
			}
		}
		return
	}

	// Barnes-Hut criterion: s/d < theta with s the node side length.
	if n.state == stateLeaf || (2*n.halfSize)/dist < t.theta {
		factor := G * n.totalMass / (distSq * dist)
		for i := 0; i < 3; i++ {
			acc[i] = factor * delta[i]
		}
		return
	}
	for _, ci := range n.children {
		sum := t.accel(ci, pos, G)
		for i := 0; i < 3; i++ {
			acc[i] += sum[i]
		}
	}
	return
}

func (t *Octree) countNodes(ni int32) int {
	count := 1
	if t.nodes[ni].state == stateInternal {
		for _, ci := range t.nodes[ni].children {
			count += t.countNodes(ci)
		}
	}
	return count
}
