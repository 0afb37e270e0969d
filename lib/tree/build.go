package tree

/* build.go contains an octree builder for Tree. */

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMaxDepth is the subdivision limit Build uses when none is given.
const DefaultMaxDepth = 64

// BuildOptions controls octree construction.
type BuildOptions struct {
	// MaxDepth is the number of subdivisions after which particles that
	// still share a node are given sibling leaves instead of being split
	// further. Non-positive values mean DefaultMaxDepth.
	MaxDepth int
}

type builder struct {
	parts    []Particle
	nodes    []Node
	maxDepth int
}

// Build constructs an octree over parts. The root's box is the bounding cube
// of the particles, so every node is a cube and its x-extent is its size.
// Each leaf holds exactly one particle. Children are ordered by octant
// (x is bit 0, y bit 1, z bit 2) and nodes are stored in pre-order.
func Build(parts []Particle, opt ...BuildOptions) (*Tree, error) {
	if len(parts) == 0 {
		return nil, ErrEmpty
	}

	maxDepth := DefaultMaxDepth
	if len(opt) > 0 && opt[0].MaxDepth > 0 {
		maxDepth = opt[0].MaxDepth
	}

	for _, p := range parts {
		if !finite(p.X.X) || !finite(p.X.Y) || !finite(p.X.Z) {
			return nil, fmt.Errorf("%w: particle %d has position %v",
				ErrInvalidParticle, p.ID, p.X)
		} else if !finite(p.M) || p.M < 0 {
			return nil, fmt.Errorf("%w: particle %d has mass %g",
				ErrInvalidParticle, p.ID, p.M)
		}
	}

	index, err := indexParticles(parts)
	if err != nil {
		return nil, err
	}

	b := &builder{
		parts:    parts,
		nodes:    make([]Node, 0, 2*len(parts)),
		maxDepth: maxDepth,
	}

	idx := make([]int, len(parts))
	for i := range idx {
		idx[i] = i
	}
	root := b.build(idx, boundingCube(parts), 0)

	return &Tree{nodes: b.nodes, root: root, parts: parts, index: index}, nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// boundingCube returns the smallest cube with its minimum corner at the
// minimum particle coordinates that contains every particle.
func boundingCube(parts []Particle) Box {
	min, max := parts[0].X, parts[0].X
	for _, p := range parts[1:] {
		min.X, max.X = math.Min(min.X, p.X.X), math.Max(max.X, p.X.X)
		min.Y, max.Y = math.Min(min.Y, p.X.Y), math.Max(max.Y, p.X.Y)
		min.Z, max.Z = math.Min(min.Z, p.X.Z), math.Max(max.Z, p.X.Z)
	}

	box := Box{Min: min, Max: max}
	w := box.MaxWidth()
	box.Max = r3.Add(min, r3.Vec{X: w, Y: w, Z: w})
	return box
}

// build adds the subtree for the particles at idx to the arena and returns
// the index of its root.
func (b *builder) build(idx []int, box Box, depth int) int {
	i := len(b.nodes)
	b.nodes = append(b.nodes, Node{Box: box})

	if len(idx) == 1 {
		p := b.parts[idx[0]]
		b.nodes[i] = Node{COM: p.X, M: p.M, Box: box, Leaf: true, Particle: p.ID}
		return i
	}

	var children []int
	if depth >= b.maxDepth {
		// Unresolvable: every particle gets its own leaf in this box.
		for _, j := range idx {
			children = append(children, b.build([]int{j}, box, depth+1))
		}
	} else {
		var oct [8][]int
		c := box.Center()
		for _, j := range idx {
			o := octant(b.parts[j].X, c)
			oct[o] = append(oct[o], j)
		}
		for o := range oct {
			if len(oct[o]) == 0 {
				continue
			}
			children = append(children,
				b.build(oct[o], octantBox(box, c, o), depth+1))
		}
	}

	b.nodes[i].Children = children
	b.nodes[i].M, b.nodes[i].COM = b.aggregate(children)
	return i
}

// aggregate returns the total mass and center of mass of a set of nodes. The
// center of massless nodes is the mean of their centers.
func (b *builder) aggregate(children []int) (float64, r3.Vec) {
	m, com, mean := 0.0, r3.Vec{}, r3.Vec{}
	for _, c := range children {
		n := &b.nodes[c]
		m += n.M
		com = r3.Add(com, r3.Scale(n.M, n.COM))
		mean = r3.Add(mean, n.COM)
	}
	if m == 0 {
		return 0, r3.Scale(1/float64(len(children)), mean)
	}
	return m, r3.Scale(1/m, com)
}

func octant(x, c r3.Vec) int {
	o := 0
	if x.X >= c.X {
		o |= 1
	}
	if x.Y >= c.Y {
		o |= 2
	}
	if x.Z >= c.Z {
		o |= 4
	}
	return o
}

func octantBox(box Box, c r3.Vec, o int) Box {
	sub := Box{Min: box.Min, Max: c}
	if o&1 != 0 {
		sub.Min.X, sub.Max.X = c.X, box.Max.X
	}
	if o&2 != 0 {
		sub.Min.Y, sub.Max.Y = c.Y, box.Max.Y
	}
	if o&4 != 0 {
		sub.Min.Z, sub.Max.Z = c.Z, box.Max.Z
	}
	return sub
}
