package lib

/* modes.go contains the work done by each of bhforce's run modes. */

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/bhforce/lib/energy"
	"github.com/phil-mansfield/bhforce/lib/force"
	"github.com/phil-mansfield/bhforce/lib/report"
	"github.com/phil-mansfield/bhforce/lib/tree"
)

// Energies is the total energy of a catalog.
type Energies struct {
	Kinetic, Potential, Total float64
	Method                    string // "direct" or "tree"
}

// Comparison summarizes the relative error of the tree accelerations and of
// gonum's reference accelerations against direct summation. If gonum can't
// build its tree for the catalog, HasRef is false and MeanRef and MaxRef are
// NaN.
type Comparison struct {
	Targets           int
	MeanTree, MaxTree float64
	HasRef            bool
	MeanRef, MaxRef   float64
}

// load reads the catalog and builds its tree.
func load(args *Args) (*Catalog, *tree.Tree, error) {
	cat, err := LoadParticles(args)
	if err != nil {
		return nil, nil, err
	}

	t0 := time.Now()
	t, err := tree.Build(cat.Particles, tree.BuildOptions{MaxDepth: args.MaxDepth})
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(log.Fields{
		"nodes":   t.Len(),
		"depth":   t.Depth(),
		"elapsed": time.Since(t0),
	}).Info("Built tree.")

	return cat, t, nil
}

// Accel runs the "accel" mode: it computes the tree acceleration of every
// target on this rank and writes them to args.Output. It returns the name of
// the file that was written.
func Accel(args *Args) (string, error) {
	t0 := time.Now()
	if err := args.Force.Validate(); err != nil {
		return "", err
	}

	cat, t, err := load(args)
	if err != nil {
		return "", err
	}
	ids, err := Targets(args, cat)
	if err != nil {
		return "", err
	}

	acc, err := force.Evaluate(ids, force.TreeEvaluator(t, args.Force), args.Threads)
	if err != nil {
		return "", err
	}

	hd := report.Header{
		RunName:   args.RunName,
		Particles: len(cat.Particles),
		Workers:   args.Threads,
		Rank:      args.Rank,
		Ranks:     args.Ranks,
		Theta:     args.Force.Theta,
		G:         args.Force.G,
		Softening: args.Force.Eps,
	}
	if cat.V != nil {
		e, err := catalogEnergy(args, cat, t)
		if err != nil {
			return "", err
		}
		hd.HasEnergy = true
		hd.Kinetic, hd.Potential, hd.Sum = e.Kinetic, e.Potential, e.Total
	}
	hd.Time = time.Now()
	hd.Elapsed = time.Since(t0)

	fname, err := report.WriteFile(args.Output, args.Compress, hd, ids, acc)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{
		"file": fname,
		"rows": len(ids),
	}).Info("Wrote accelerations.")

	return fname, nil
}

// Compare runs the "compare" mode. The tree accelerations and gonum's
// reference accelerations of this rank's targets are compared against direct
// summation.
func Compare(args *Args) (*Comparison, error) {
	if err := args.Force.Validate(); err != nil {
		return nil, err
	}

	cat, t, err := load(args)
	if err != nil {
		return nil, err
	}
	ids, err := Targets(args, cat)
	if err != nil {
		return nil, err
	}

	acc, err := force.Evaluate(ids, force.TreeEvaluator(t, args.Force), args.Threads)
	if err != nil {
		return nil, err
	}
	exact, err := force.Evaluate(ids, force.DirectEvaluator(t, args.Force), args.Threads)
	if err != nil {
		return nil, err
	}
	treeErr, err := force.RelativeErrors(acc, exact)
	if err != nil {
		return nil, err
	}

	c := &Comparison{Targets: len(ids), MeanRef: math.NaN(), MaxRef: math.NaN()}
	if len(ids) > 0 {
		c.MeanTree, c.MaxTree = stat.Mean(treeErr, nil), floats.Max(treeErr)
	}

	// gonum's octree refuses some catalogs (e.g. coincident particles) that
	// the tree above handles.
	ref, err := force.NewReference(t, args.Force)
	if err != nil {
		log.WithField("error", err).Warn(
			"Could not build the reference tree, so only tree errors are reported.")
		return c, nil
	}

	refAcc, err := force.Evaluate(ids, ref.Acceleration, args.Threads)
	if err != nil {
		return nil, err
	}
	refErr, err := force.RelativeErrors(refAcc, exact)
	if err != nil {
		return nil, err
	}

	c.HasRef = true
	c.MeanRef, c.MaxRef = 0, 0
	if len(ids) > 0 {
		c.MeanRef, c.MaxRef = stat.Mean(refErr, nil), floats.Max(refErr)
	}
	return c, nil
}

// Energy runs the "energy" mode. The catalog must have velocities.
func Energy(args *Args) (*Energies, error) {
	cat, err := LoadParticles(args)
	if err != nil {
		return nil, err
	}
	if cat.V == nil {
		return nil, fmt.Errorf("The energy mode requires VXColumn, VYColumn, and VZColumn to be set.")
	}
	return catalogEnergy(args, cat, nil)
}

// catalogEnergy sums direct pairwise potentials for catalogs of up to
// args.DirectLimit particles and uses the tree potential above that. t is
// built if it's nil and needed.
func catalogEnergy(args *Args, cat *Catalog, t *tree.Tree) (*Energies, error) {
	x, m := cat.Positions(), cat.Masses()

	ke, err := energy.Kinetic(cat.V, m)
	if err != nil {
		return nil, err
	}

	e := &Energies{Kinetic: ke, Method: "direct"}
	if len(x) <= args.DirectLimit {
		e.Potential, err = energy.PotentialDirect(x, m, args.Force.G, args.Force.Eps)
	} else {
		e.Method = "tree"
		if t == nil {
			t, err = tree.Build(cat.Particles, tree.BuildOptions{MaxDepth: args.MaxDepth})
			if err != nil {
				return nil, err
			}
		}
		e.Potential, err = energy.PotentialTree(t, args.Force)
	}
	if err != nil {
		return nil, err
	}

	e.Total = energy.Total(e.Kinetic, e.Potential)
	return e, nil
}
