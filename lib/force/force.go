/*package force computes Barnes-Hut approximations to the gravitational
acceleration on particles in a tree.Tree, along with the exact pairwise sums
they approximate.*/
package force

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/tree"
)

var (
	// ErrParticleNotFound is returned when the target id isn't in the tree.
	ErrParticleNotFound = errors.New("force: particle not found")
	// ErrDegenerate is returned when a contribution is evaluated at zero
	// separation with zero softening.
	ErrDegenerate = errors.New("force: zero separation with zero softening")
	// ErrInvalidParams is returned for out-of-range Params.
	ErrInvalidParams = errors.New("force: invalid parameters")
)

// SizeMode selects how a node's characteristic size is measured for the
// opening-angle test.
type SizeMode int

const (
	// SizeX uses the x-extent of the node's box. This is exact for the
	// cubic nodes produced by tree.Build.
	SizeX SizeMode = iota
	// SizeMax uses the largest extent of the node's box.
	SizeMax
)

// DegeneratePolicy selects what happens when a node with mass sits exactly
// on the target and the softening is zero.
type DegeneratePolicy int

const (
	// DegenerateError stops the evaluation with ErrDegenerate.
	DegenerateError DegeneratePolicy = iota
	// DegenerateSkip drops the offending contribution.
	DegenerateSkip
)

// Params are the parameters of a force evaluation.
type Params struct {
	Theta float64 // Opening angle. Larger values prune more.
	G     float64 // Gravitational constant.
	Eps   float64 // Plummer softening length.

	Size       SizeMode
	Degenerate DegeneratePolicy
}

// Validate returns an error wrapping ErrInvalidParams if p can't be used.
func (p Params) Validate() error {
	switch {
	case !(p.Theta > 0) || math.IsInf(p.Theta, 0):
		return fmt.Errorf("%w: theta = %g, must be positive",
			ErrInvalidParams, p.Theta)
	case math.IsNaN(p.G) || math.IsInf(p.G, 0):
		return fmt.Errorf("%w: G = %g, must be finite", ErrInvalidParams, p.G)
	case !(p.Eps >= 0) || math.IsInf(p.Eps, 0):
		return fmt.Errorf("%w: softening = %g, must be non-negative",
			ErrInvalidParams, p.Eps)
	case p.Size != SizeX && p.Size != SizeMax:
		return fmt.Errorf("%w: unknown size mode %d", ErrInvalidParams, p.Size)
	case p.Degenerate != DegenerateError && p.Degenerate != DegenerateSkip:
		return fmt.Errorf("%w: unknown degenerate policy %d",
			ErrInvalidParams, p.Degenerate)
	}
	return nil
}

func (p Params) size(b tree.Box) float64 {
	if p.Size == SizeMax {
		return b.MaxWidth()
	}
	return b.XWidth()
}

// pointMass returns the softened acceleration towards a point mass m at
// displacement dr with |dr| = r.
func (p Params) pointMass(m float64, dr r3.Vec, r float64) (r3.Vec, error) {
	if m == 0 {
		return r3.Vec{}, nil
	}
	d2 := r*r + p.Eps*p.Eps
	if d2 == 0 {
		if p.Degenerate == DegenerateSkip {
			return r3.Vec{}, nil
		}
		return r3.Vec{}, ErrDegenerate
	}
	return r3.Scale(p.G*m/(d2*math.Sqrt(d2)), dr), nil
}

// Acceleration returns the Barnes-Hut approximation to the acceleration on
// the particle with the given id from every other particle in t.
//
// Nodes are walked depth-first with children in order. A leaf holding the
// target is skipped. A leaf, or a node whose size/r is below p.Theta, is
// treated as a point mass at its center of mass. Anything else is opened.
// Contributions are summed in that same order.
func Acceleration(t *tree.Tree, id int, p Params) (r3.Vec, error) {
	if err := p.Validate(); err != nil {
		return r3.Vec{}, err
	}
	target, ok := t.Particle(id)
	if !ok {
		return r3.Vec{}, fmt.Errorf("%w: id %d", ErrParticleNotFound, id)
	}

	acc, err := p.walk(t, t.Root(), target)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("particle %d: %w", id, err)
	}
	return acc, nil
}

func (p Params) walk(t *tree.Tree, i int, target tree.Particle) (r3.Vec, error) {
	node := t.Node(i)
	if node.Leaf && node.Particle == target.ID {
		return r3.Vec{}, nil
	}

	dr := r3.Sub(node.COM, target.X)
	r := r3.Norm(dr)

	if node.Leaf || p.size(node.Box)/r < p.Theta {
		return p.pointMass(node.M, dr, r)
	}

	acc := r3.Vec{}
	for _, c := range node.Children {
		a, err := p.walk(t, c, target)
		if err != nil {
			return r3.Vec{}, err
		}
		acc = r3.Add(acc, a)
	}
	return acc, nil
}

// Direct returns the exact softened acceleration on the particle with the
// given id, summed pairwise over t.Particles() in order. p.Theta is only
// validated, not used.
func Direct(t *tree.Tree, id int, p Params) (r3.Vec, error) {
	if err := p.Validate(); err != nil {
		return r3.Vec{}, err
	}
	target, ok := t.Particle(id)
	if !ok {
		return r3.Vec{}, fmt.Errorf("%w: id %d", ErrParticleNotFound, id)
	}

	acc := r3.Vec{}
	for _, q := range t.Particles() {
		if q.ID == target.ID {
			continue
		}
		dr := r3.Sub(q.X, target.X)
		a, err := p.pointMass(q.M, dr, r3.Norm(dr))
		if err != nil {
			return r3.Vec{}, fmt.Errorf("particle %d from %d: %w", id, q.ID, err)
		}
		acc = r3.Add(acc, a)
	}
	return acc, nil
}

// RelativeErrors returns |approx[i] - exact[i]| / |exact[i]| for each i. If
// exact[i] is zero, the absolute error is used instead.
func RelativeErrors(approx, exact []r3.Vec) ([]float64, error) {
	if len(approx) != len(exact) {
		return nil, fmt.Errorf("Given %d approximate accelerations, but %d exact ones.",
			len(approx), len(exact))
	}

	out := make([]float64, len(approx))
	for i := range out {
		diff := r3.Norm(r3.Sub(approx[i], exact[i]))
		if norm := r3.Norm(exact[i]); norm > 0 {
			out[i] = diff / norm
		} else {
			out[i] = diff
		}
	}
	return out, nil
}
