package lib

/* This file contains functions for loading particles and choosing which of
them a rank evaluates. */

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/catio"
	"github.com/phil-mansfield/bhforce/lib/format"
	"github.com/phil-mansfield/bhforce/lib/split"
	"github.com/phil-mansfield/bhforce/lib/tree"
)

// Catalog is the set of particles read from Particles.File. V is nil if the
// catalog has no velocity columns.
type Catalog struct {
	Particles []tree.Particle
	V         []r3.Vec
}

// Positions returns the positions of the particles in catalog order.
func (cat *Catalog) Positions() []r3.Vec {
	x := make([]r3.Vec, len(cat.Particles))
	for i := range x {
		x[i] = cat.Particles[i].X
	}
	return x
}

// Masses returns the masses of the particles in catalog order.
func (cat *Catalog) Masses() []float64 {
	m := make([]float64, len(cat.Particles))
	for i := range m {
		m[i] = cat.Particles[i].M
	}
	return m
}

// IDs returns the ids of the particles in catalog order.
func (cat *Catalog) IDs() []int {
	ids := make([]int, len(cat.Particles))
	for i := range ids {
		ids[i] = cat.Particles[i].ID
	}
	return ids
}

// LoadParticles reads the catalog named by args. If there's no ID column,
// particles are numbered by row. If there's no mass column, every particle
// has unit mass.
func LoadParticles(args *Args) (*Catalog, error) {
	rd, err := catio.TextFile(args.ParticleFile)
	if err != nil {
		return nil, err
	}
	return readCatalog(rd, args.Columns)
}

func readCatalog(rd catio.Reader, col Columns) (*Catalog, error) {
	n := rd.Rows()
	if n == 0 {
		return nil, fmt.Errorf("The particle catalog has no rows.")
	}

	xs, err := rd.ReadFloat64s([]int{col.X, col.Y, col.Z})
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Particles: make([]tree.Particle, n)}
	for i := range cat.Particles {
		cat.Particles[i] = tree.Particle{
			ID: i, X: r3.Vec{X: xs[0][i], Y: xs[1][i], Z: xs[2][i]}, M: 1,
		}
	}

	if col.ID >= 0 {
		ids, err := rd.ReadInts([]int{col.ID})
		if err != nil {
			return nil, err
		}
		for i := range cat.Particles {
			cat.Particles[i].ID = ids[0][i]
		}
	}

	if col.Mass >= 0 {
		ms, err := rd.ReadFloat64s([]int{col.Mass})
		if err != nil {
			return nil, err
		}
		for i := range cat.Particles {
			cat.Particles[i].M = ms[0][i]
		}
	}

	if col.HasVelocities() {
		vs, err := rd.ReadFloat64s([]int{col.VX, col.VY, col.VZ})
		if err != nil {
			return nil, err
		}
		cat.V = make([]r3.Vec, n)
		for i := range cat.V {
			cat.V[i] = r3.Vec{X: vs[0][i], Y: vs[1][i], Z: vs[2][i]}
		}
	}

	log.WithFields(log.Fields{
		"particles":  n,
		"velocities": cat.V != nil,
	}).Debug("Read particle catalog.")

	return cat, nil
}

// Targets returns the ids this rank evaluates. The ids selected by
// args.Targets (or every particle, in catalog order, if it's empty) are split
// into args.Ranks contiguous chunks, and chunk args.Rank is returned.
func Targets(args *Args, cat *Catalog) ([]int, error) {
	var ids []int
	if args.Targets == "" {
		ids = cat.IDs()
	} else {
		var err error
		ids, err = format.ExpandSequenceFormat(args.Targets)
		if err != nil {
			return nil, err
		}
		known := make(map[int]bool, len(cat.Particles))
		for _, p := range cat.Particles {
			known[p.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return nil, fmt.Errorf("Targets includes the id %d, but no particle has that id.", id)
			}
		}
	}

	if err := split.Check(len(ids), args.Ranks, args.Rank); err != nil {
		return nil, err
	}
	start, end := split.Range(len(ids), args.Ranks, args.Rank)
	return ids[start:end], nil
}
