package lib

/* check.go contains the core functions of bhforce's "check" mode. */

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/bhforce/lib/format"
	"github.com/phil-mansfield/bhforce/lib/split"
)

// Problems returns every problem it can find with args for a run in the given
// mode, including ones that require looking at the file system. Output is
// only checked for the modes that write it, "accel" and "check".
func Problems(mode string, args *Args) []error {
	errs := []error{}
	add := func(msg string, a ...interface{}) {
		errs = append(errs, fmt.Errorf(msg, a...))
	}

	if args.ParticleFile == "" {
		add("Particles.File must be set.")
	} else if info, err := os.Stat(args.ParticleFile); err != nil {
		add("Particles.File, '%s', cannot be opened: %s", args.ParticleFile, err)
	} else if info.IsDir() {
		add("Particles.File, '%s', is a directory.", args.ParticleFile)
	}

	col := args.Columns
	for _, c := range []struct {
		name string
		val  int
	}{{"XColumn", col.X}, {"YColumn", col.Y}, {"ZColumn", col.Z}} {
		if c.val < 0 {
			add("%s is set to %d, but position columns must be non-negative.",
				c.name, c.val)
		}
	}
	nv := 0
	for _, c := range []int{col.VX, col.VY, col.VZ} {
		if c >= 0 {
			nv++
		}
	}
	if nv != 0 && nv != 3 {
		add("Either all of VXColumn, VYColumn, and VZColumn must be set or none of them must be set.")
	}

	used := map[int]bool{}
	for _, c := range []int{col.ID, col.X, col.Y, col.Z, col.Mass,
		col.VX, col.VY, col.VZ} {
		if c < 0 {
			continue
		}
		if used[c] {
			add("Column %d is assigned to more than one particle property.", c)
		}
		used[c] = true
	}

	if err := args.Force.Validate(); err != nil {
		errs = append(errs, err)
	}
	if args.MaxDepth <= 0 {
		add("MaxDepth is set to %d, but must be positive.", args.MaxDepth)
	}
	if args.DirectLimit < 0 {
		add("DirectLimit is set to %d, but must be non-negative.", args.DirectLimit)
	}

	if args.Threads <= 0 || args.Threads > runtime.NumCPU() {
		add("Threads is set to %d, but must be between 1 and %d or -1.",
			args.Threads, runtime.NumCPU())
	}
	if err := split.Check(1, args.Ranks, args.Rank); err != nil {
		add("Rank %d of %d is invalid: %s", args.Rank, args.Ranks, err)
	}

	if args.Targets != "" {
		if _, err := format.ExpandSequenceFormat(args.Targets); err != nil {
			add("Targets, '%s', is not a valid sequence: %s", args.Targets, err)
		}
	}

	if mode == "accel" || mode == "check" {
		dir := filepath.Dir(args.Output)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			add("The directory of Output, '%s', does not exist.", dir)
		}
	}

	return errs
}

// Check logs every problem with args for the given mode. With CrashOnError, problems are logged
// as errors, otherwise as warnings. Check returns true if there were no
// problems.
func Check(mode string, strictness CheckStrictness, args *Args) bool {
	errs := Problems(mode, args)
	for _, err := range errs {
		if strictness == CrashOnError {
			log.Error(err)
		} else {
			log.Warn(err)
		}
	}
	return len(errs) == 0
}
