/*package lib contains the functions that bhforce's main package strings
together: config parsing, checking, particle loading, and the run modes.
Almost all of the heavy lifting is done by lib/'s subpackages.
*/
package lib

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Version is the version of the software. It's written into the help text so
// that output tables can be matched to the code that made them.
const Version = "0.1.0"

// LogLevelVar is the environment variable that sets the logging level.
const LogLevelVar = "BHFORCE_LOG_LEVEL"

// SetupLogging configures the global logger. The level is read from
// BHFORCE_LOG_LEVEL and defaults to "info".
func SetupLogging() error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	name := strings.TrimSpace(getenv(LogLevelVar))
	if name == "" {
		log.SetLevel(log.InfoLevel)
		return nil
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("%s is set to '%s', which is not a logging level.",
			LogLevelVar, name)
	}
	log.SetLevel(level)
	return nil
}

// PrintHelp writes the help text to wr.
func PrintHelp(wr io.Writer) {
	fmt.Fprintf(wr, helpText, Version)
}

const helpText = `bhforce %s computes Barnes-Hut accelerations for a particle catalog.

Usage:
    $ bhforce <mode> <config file> [--<Var> <Value>] [--<Var>=<Value>]

Modes:
    help    - Print this message.
    check   - Check the config file and catalog for problems.
    accel   - Write the tree acceleration of every target to Output.
    compare - Compare tree and reference accelerations against direct sums.
    energy  - Print the kinetic, potential, and total energy of the catalog.

Any config variable can be overridden on the command line. Names ignore case,
'-', and '_', so --run-name and --RunName both set RunName.

Config file:
    [Run]
    RunName = bhforce  # Written into output headers.
    Threads = -1       # -1 uses every core.
    Output =           # Defaults to <RunName>.accel.txt.
    Compress = false   # zstd-compress Output and append .zst.
    Rank = -1          # -1 reads SLURM_PROCID, or 0 outside SLURM.
    Ranks = 0          # 0 reads SLURM_NTASKS, or 1 outside SLURM.
    Targets =          # Ids to evaluate, e.g. 0..100 - 63. Empty means all.

    [Particles]
    File =             # Whitespace-separated text catalog.
    IDColumn = -1      # -1 numbers particles by row.
    XColumn = 0
    YColumn = 1
    ZColumn = 2
    MassColumn = -1    # -1 gives every particle unit mass.
    VXColumn = -1      # Velocities are only needed for energies.
    VYColumn = -1
    VZColumn = -1

    [Force]
    Theta = 0.5        # Opening angle.
    G = 1
    Softening = 0
    Size = x           # Node size: x (x-extent) or max (largest extent).
    Degenerate = error # Zero-distance massive nodes: error or skip.
    MaxDepth = 64

    [Energy]
    DirectLimit = 5000 # Larger catalogs use tree potentials.

Logging is controlled by the ` + LogLevelVar + ` environment variable.
`
