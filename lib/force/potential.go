package force

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/tree"
)

// Potential returns the Barnes-Hut approximation to the softened
// gravitational potential, -sum G M / sqrt(r^2 + eps^2), at the particle with
// the given id. It walks t with the same self skip and opening test as
// Acceleration.
func Potential(t *tree.Tree, id int, p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	target, ok := t.Particle(id)
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrParticleNotFound, id)
	}

	phi, err := p.walkPotential(t, t.Root(), target)
	if err != nil {
		return 0, fmt.Errorf("particle %d: %w", id, err)
	}
	return phi, nil
}

func (p Params) walkPotential(t *tree.Tree, i int, target tree.Particle) (float64, error) {
	node := t.Node(i)
	if node.Leaf && node.Particle == target.ID {
		return 0, nil
	}

	r := r3.Norm(r3.Sub(node.COM, target.X))
	if node.Leaf || p.size(node.Box)/r < p.Theta {
		return p.pointPotential(node.M, r)
	}

	phi := 0.0
	for _, c := range node.Children {
		x, err := p.walkPotential(t, c, target)
		if err != nil {
			return 0, err
		}
		phi += x
	}
	return phi, nil
}

// pointPotential is the potential of a point mass m at distance r. It
// follows the same degenerate policy as pointMass.
func (p Params) pointPotential(m, r float64) (float64, error) {
	if m == 0 {
		return 0, nil
	}
	d2 := r*r + p.Eps*p.Eps
	if d2 == 0 {
		if p.Degenerate == DegenerateSkip {
			return 0, nil
		}
		return 0, ErrDegenerate
	}
	return -p.G * m / math.Sqrt(d2), nil
}
