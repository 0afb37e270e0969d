package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/bhforce/lib"
	"github.com/phil-mansfield/bhforce/lib/error"
)

func main() {
	if err := lib.SetupLogging(); err != nil {
		error.External("%s", err)
	}

	// Parse arguments.
	mode, configFile, cmdArgs, err := lib.ParseCommandLine(os.Args[1:])
	if err != nil {
		error.External("%s", err)
	}
	if mode == "help" {
		lib.PrintHelp(os.Stdout)
		return
	}

	rawArgs, err := lib.ParseConfigFile(configFile)
	if err != nil {
		error.External("%s", err)
	}
	if err := rawArgs.Overwrite(cmdArgs); err != nil {
		error.External("%s", err)
	}

	// Do processing that doesn't need external validation.
	args, err := rawArgs.Process()
	if err != nil {
		error.External("%s", err)
	}
	log.WithFields(log.Fields{
		"mode":     mode,
		"run_mode": args.RunMode,
		"rank":     args.Rank,
		"ranks":    args.Ranks,
	}).Debug("Parsed arguments.")

	// Run the chosen mode.
	switch mode {
	case "check":
		Check(args)
	case "accel":
		Accel(mode, args)
	case "compare":
		Compare(mode, args)
	case "energy":
		Energy(mode, args)
	default:
		error.External(
			"You attempted to run bhforce in the mode '%s', but the only valid "+
				"modes are 'help', 'check', 'accel', 'compare', and 'energy'.", mode,
		)
	}
}

// prepare checks args and sets the thread count. Any problem kills the
// program.
func prepare(mode string, args *lib.Args) {
	if !lib.Check(mode, lib.CrashOnError, args) {
		error.External("The config has problems, listed above.")
	}
	if err := lib.SetThreads(args.Threads); err != nil {
		error.External("%s", err)
	}
}

// Check runs bhforce's "check" mode which tests for errors in the
// configuration arguments.
func Check(args *lib.Args) {
	if lib.Check("check", lib.WarnOnError, args) {
		fmt.Println("No errors detected.")
	} else {
		error.External("Errors were detected, listed above.")
	}
}

// Accel runs bhforce's "accel" mode, which writes tree accelerations.
func Accel(mode string, args *lib.Args) {
	prepare(mode, args)
	fname, err := lib.Accel(args)
	if err != nil {
		error.External("%s", err)
	}
	fmt.Println(fname)
}

// Compare runs bhforce's "compare" mode, which measures the tree's error.
func Compare(mode string, args *lib.Args) {
	prepare(mode, args)
	c, err := lib.Compare(args)
	if err != nil {
		error.External("%s", err)
	}
	fmt.Printf("# targets mean_tree max_tree mean_ref max_ref\n")
	fmt.Printf("%d %.6e %.6e %.6e %.6e\n",
		c.Targets, c.MeanTree, c.MaxTree, c.MeanRef, c.MaxRef)
}

// Energy runs bhforce's "energy" mode.
func Energy(mode string, args *lib.Args) {
	prepare(mode, args)
	e, err := lib.Energy(args)
	if err != nil {
		error.External("%s", err)
	}
	fmt.Printf("# method kinetic potential total\n")
	fmt.Printf("%s %.8e %.8e %.8e\n", e.Method, e.Kinetic, e.Potential, e.Total)
}
