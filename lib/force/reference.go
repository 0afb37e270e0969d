package force

/* reference.go wraps gonum's Barnes-Hut implementation so that the accuracy
of Acceleration can be checked against an independent tree code. */

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/tree"
)

// body implements barneshut.Particle3. Bodies are always used through
// pointers so gonum's identity check excludes self-interaction.
type body struct {
	x r3.Vec
	m float64
}

func (b *body) Coord3() r3.Vec { return b.x }
func (b *body) Mass() float64  { return b.m }

// Reference is an independent Barnes-Hut evaluator built on gonum's
// spatial/barneshut octree. It uses gonum's own opening criterion, so it
// agrees with Acceleration exactly only in the theta -> 0 limit.
type Reference struct {
	vol    *barneshut.Volume
	bodies map[int]*body
	p      Params
}

// NewReference builds a Reference over the particles of t.
func NewReference(t *tree.Tree, p Params) (*Reference, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	parts := t.Particles()
	ps := make([]barneshut.Particle3, len(parts))
	bodies := make(map[int]*body, len(parts))
	for i, q := range parts {
		b := &body{x: q.X, m: q.M}
		ps[i], bodies[q.ID] = b, b
	}

	vol, err := barneshut.NewVolume(ps)
	if err != nil {
		return nil, fmt.Errorf("Could not build reference tree: %w", err)
	}
	return &Reference{vol: vol, bodies: bodies, p: p}, nil
}

// Acceleration returns gonum's approximation to the acceleration on the
// particle with the given id.
func (ref *Reference) Acceleration(id int) (r3.Vec, error) {
	b, ok := ref.bodies[id]
	if !ok {
		return r3.Vec{}, fmt.Errorf("%w: id %d", ErrParticleNotFound, id)
	}

	var degenerate bool
	acc := ref.vol.ForceOn(b, ref.p.Theta, func(
		_, _ barneshut.Particle3, _, m2 float64, v r3.Vec,
	) r3.Vec {
		a, err := ref.p.pointMass(m2, v, r3.Norm(v))
		if err != nil {
			degenerate = true
		}
		return a
	})

	if degenerate {
		return r3.Vec{}, fmt.Errorf("particle %d: %w", id, ErrDegenerate)
	}
	return acc, nil
}
