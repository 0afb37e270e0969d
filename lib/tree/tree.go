/*package tree contains the read-only spatial tree that force evaluation walks
over. Trees are stored as arenas of nodes addressed by index, and each tree
carries the id -> particle lookup that evaluators use to resolve targets.*/
package tree

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmpty is returned when a tree is requested for zero particles.
	ErrEmpty = errors.New("tree: no particles")
	// ErrDuplicateID is returned when two particles share an id.
	ErrDuplicateID = errors.New("tree: duplicate particle id")
	// ErrInvalidTree is returned by New when the node arena isn't a tree.
	ErrInvalidTree = errors.New("tree: invalid node arena")
	// ErrInvalidParticle is returned for particles with non-finite positions
	// or masses, or negative masses.
	ErrInvalidParticle = errors.New("tree: invalid particle")
)

// Particle is a point mass with a stable integer id.
type Particle struct {
	ID int
	X  r3.Vec
	M  float64
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max r3.Vec
}

// XWidth returns the extent of the box along the x-axis.
func (b Box) XWidth() float64 { return b.Max.X - b.Min.X }

// MaxWidth returns the largest extent of the box over all three axes.
func (b Box) MaxWidth() float64 {
	return math.Max(b.Max.X-b.Min.X, math.Max(b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z))
}

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Node is a single region of space in a Tree. COM and M are the
// mass-weighted aggregate of the node's children. Particle is the id of the
// particle a leaf represents and is meaningless for internal nodes.
type Node struct {
	COM      r3.Vec
	M        float64
	Box      Box
	Leaf     bool
	Children []int
	Particle int
}

// Tree is an immutable arena of Nodes together with the particles they were
// built from. It is safe for concurrent readers.
type Tree struct {
	nodes []Node
	root  int
	parts []Particle
	index map[int]int
}

// New wraps an externally constructed node arena. It checks that the arena
// is a tree rooted at root (every other node has exactly one parent, there
// are no cycles, and leaves have no children), that particle ids are
// unique, and that every leaf's particle is in parts. It does not check
// that COM and M are consistent with the children.
func New(nodes []Node, root int, parts []Particle) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, ErrEmpty
	}
	if root < 0 || root >= len(nodes) {
		return nil, fmt.Errorf("%w: root index %d outside arena of %d nodes",
			ErrInvalidTree, root, len(nodes))
	}

	parents := make([]int, len(nodes))
	for i := range nodes {
		if nodes[i].Leaf && len(nodes[i].Children) > 0 {
			return nil, fmt.Errorf("%w: leaf %d has %d children",
				ErrInvalidTree, i, len(nodes[i].Children))
		}
		for _, c := range nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d has child %d outside arena",
					ErrInvalidTree, i, c)
			}
			parents[c]++
		}
	}

	for i, n := range parents {
		if i == root && n != 0 {
			return nil, fmt.Errorf("%w: root %d has a parent", ErrInvalidTree, i)
		} else if i != root && n != 1 {
			return nil, fmt.Errorf("%w: node %d has %d parents",
				ErrInvalidTree, i, n)
		}
	}

	// With one parent per node and a parentless root, the arena is a tree
	// exactly when every node is reachable from the root.
	seen := make([]bool, len(nodes))
	stack := []int{root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen[i] = true
		stack = append(stack, nodes[i].Children...)
	}
	for i := range seen {
		if !seen[i] {
			return nil, fmt.Errorf("%w: node %d is unreachable from root %d",
				ErrInvalidTree, i, root)
		}
	}

	index, err := indexParticles(parts)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if _, ok := index[nodes[i].Particle]; nodes[i].Leaf && !ok {
			return nil, fmt.Errorf("%w: leaf %d holds particle %d, which isn't in parts",
				ErrInvalidTree, i, nodes[i].Particle)
		}
	}

	return &Tree{nodes: nodes, root: root, parts: parts, index: index}, nil
}

func indexParticles(parts []Particle) (map[int]int, error) {
	index := make(map[int]int, len(parts))
	for i, p := range parts {
		if _, ok := index[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		index[p.ID] = i
	}
	return index, nil
}

// Root returns the arena index of the root node.
func (t *Tree) Root() int { return t.root }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at arena index i. The returned pointer must not be
// used to modify the tree.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// Particle looks up a particle by id.
func (t *Tree) Particle(id int) (Particle, bool) {
	i, ok := t.index[id]
	if !ok {
		return Particle{}, false
	}
	return t.parts[i], true
}

// Particles returns the tree's particles in the order they were supplied.
// The slice is shared and must not be modified.
func (t *Tree) Particles() []Particle { return t.parts }

// Depth returns the number of levels in the tree. A lone leaf has depth 1.
func (t *Tree) Depth() int { return t.depth(t.root) }

func (t *Tree) depth(i int) int {
	max := 0
	for _, c := range t.nodes[i].Children {
		if d := t.depth(c); d > max {
			max = d
		}
	}
	return max + 1
}
