package lib

/* parse.go contains functions for reading config files and command line
arguments and turning them into Args. */

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/bhforce/lib/force"
	"github.com/phil-mansfield/bhforce/lib/tree"
)

// configFile mirrors the layout of a bhforce config file. Each field is a
// variable in the section named by its parent struct.
type configFile struct {
	Run struct {
		RunName  string
		Threads  int
		Output   string
		Compress bool
		Rank     int
		Ranks    int
		Targets  string
	}
	Particles struct {
		File                         string
		IDColumn                     int
		XColumn, YColumn, ZColumn    int
		MassColumn                   int
		VXColumn, VYColumn, VZColumn int
	}
	Force struct {
		Theta      float64
		G          float64
		Softening  float64
		Size       string
		Degenerate string
		MaxDepth   int
	}
	Energy struct {
		DirectLimit int
	}
}

func defaultConfigFile() configFile {
	cfg := configFile{}

	cfg.Run.RunName = "bhforce"
	cfg.Run.Threads = -1
	cfg.Run.Rank = -1

	cfg.Particles.IDColumn = -1
	cfg.Particles.XColumn = 0
	cfg.Particles.YColumn = 1
	cfg.Particles.ZColumn = 2
	cfg.Particles.MassColumn = -1
	cfg.Particles.VXColumn = -1
	cfg.Particles.VYColumn = -1
	cfg.Particles.VZColumn = -1

	cfg.Force.Theta = 0.5
	cfg.Force.G = 1
	cfg.Force.Size = "x"
	cfg.Force.Degenerate = "error"
	cfg.Force.MaxDepth = tree.DefaultMaxDepth

	cfg.Energy.DirectLimit = 5000

	return cfg
}

// variables maps normalized variable names to their section and canonical
// name in the config file.
var variables = map[string][2]string{}

func init() {
	for section, names := range map[string][]string{
		"Run": {"RunName", "Threads", "Output", "Compress", "Rank", "Ranks",
			"Targets"},
		"Particles": {"File", "IDColumn", "XColumn", "YColumn", "ZColumn",
			"MassColumn", "VXColumn", "VYColumn", "VZColumn"},
		"Force": {"Theta", "G", "Softening", "Size", "Degenerate",
			"MaxDepth"},
		"Energy": {"DirectLimit"},
	} {
		for _, name := range names {
			variables[normalize(name)] = [2]string{section, name}
		}
	}
}

// normalize converts a variable name into the form used as a key in
// variables, so "--run-name", "RunName" and "run_name" are all the same.
func normalize(name string) string {
	name = strings.TrimLeft(name, "-")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return strings.ToLower(name)
}

// RawArgs stores the unprocessed values which the user assigned to each config
// variable.
type RawArgs struct {
	cfg configFile
	set map[string]string // normalized name -> value, for overrides only
}

// Args stores configuration information. It is a post-processed version of
// RawArgs.
type Args struct {
	RunName string
	RunMode RunMode
	Threads int

	Output   string
	Compress bool

	Rank, Ranks int
	Targets     string // Sequence format of target ids. Empty means all.

	ParticleFile string
	Columns      Columns

	Force    force.Params
	MaxDepth int

	DirectLimit int
}

// Columns gives the catalog column of each particle property. -1 means the
// property isn't in the catalog.
type Columns struct {
	ID, X, Y, Z, Mass, VX, VY, VZ int
}

// HasVelocities returns true if all three velocity columns are set.
func (c Columns) HasVelocities() bool {
	return c.VX >= 0 && c.VY >= 0 && c.VZ >= 0
}

// ParseCommandLine parses command line arguments (without the program name)
// and returns the mode bhforce is being run in, the name of the config file,
// and any variables which were set. Expects that the arguments are presented
// in the order:
// $ bhforce <mode> <config file> [--<Var1> <Value1>] [--<Var2>=<Value2>]
// The "help" mode doesn't need a config file.
func ParseCommandLine(argv []string) (mode, configFile string, args *RawArgs, err error) {
	args = &RawArgs{set: map[string]string{}}
	if len(argv) == 0 {
		return "help", "", args, nil
	}

	mode = argv[0]
	if len(argv) == 1 {
		if mode != "help" {
			return "", "", nil, fmt.Errorf("Mode '%s' requires a config file.", mode)
		}
		return mode, "", args, nil
	}

	configFile = argv[1]
	rest := argv[2:]
	for i := 0; i < len(rest); i++ {
		flag := rest[i]
		if !strings.HasPrefix(flag, "--") {
			return "", "", nil, fmt.Errorf(
				"Expected a variable starting with '--', but got '%s'.", flag)
		}

		var name, value string
		if j := strings.IndexByte(flag, '='); j != -1 {
			name, value = flag[:j], flag[j+1:]
		} else if i+1 < len(rest) {
			name, value = flag, rest[i+1]
			i++
		} else {
			return "", "", nil, fmt.Errorf("Variable '%s' has no value.", flag)
		}

		key := normalize(name)
		if _, ok := variables[key]; !ok {
			return "", "", nil, fmt.Errorf("'%s' is not a recognized variable.", name)
		}
		args.set[key] = value
	}

	return mode, configFile, args, nil
}

// ParseConfigFile parses arguments from a config file. Variables which the
// file doesn't set keep their default values.
func ParseConfigFile(fileName string) (*RawArgs, error) {
	args := &RawArgs{cfg: defaultConfigFile(), set: map[string]string{}}
	if err := gcfg.ReadFileInto(&args.cfg, fileName); err != nil {
		return nil, fmt.Errorf("Could not parse config file '%s': %w", fileName, err)
	}
	return args, nil
}

// ParseConfigString is ParseConfigFile for config text held in memory.
func ParseConfigString(text string) (*RawArgs, error) {
	args := &RawArgs{cfg: defaultConfigFile(), set: map[string]string{}}
	if err := gcfg.ReadStringInto(&args.cfg, text); err != nil {
		return nil, fmt.Errorf("Could not parse config: %w", err)
	}
	return args, nil
}

// Overwrite arguments in arg1 which have been set in arg2.
func (arg1 *RawArgs) Overwrite(arg2 *RawArgs) error {
	keys := make([]string, 0, len(arg2.set))
	for key := range arg2.set {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := variables[key]
		text := fmt.Sprintf("[%s]\n%s = %s\n", v[0], v[1], quote(arg2.set[key]))
		if err := gcfg.ReadStringInto(&arg1.cfg, text); err != nil {
			return fmt.Errorf("Could not set %s to '%s': %w", v[1], arg2.set[key], err)
		}
		arg1.set[key] = arg2.set[key]
	}
	return nil
}

// quote turns a value into a double-quoted gcfg string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// getenv is swapped out by tests.
var getenv = os.Getenv

// Process converts the raw user input to a format which is more useful for
// internal functions. Very simple validation will be done here, but nothing
// which requires interacting with external files.
func (raw *RawArgs) Process() (*Args, error) {
	cfg := raw.cfg
	args := &Args{
		RunName:      cfg.Run.RunName,
		Threads:      cfg.Run.Threads,
		Output:       cfg.Run.Output,
		Compress:     cfg.Run.Compress,
		Rank:         cfg.Run.Rank,
		Ranks:        cfg.Run.Ranks,
		Targets:      strings.TrimSpace(cfg.Run.Targets),
		ParticleFile: cfg.Particles.File,
		Columns: Columns{
			ID:   cfg.Particles.IDColumn,
			X:    cfg.Particles.XColumn,
			Y:    cfg.Particles.YColumn,
			Z:    cfg.Particles.ZColumn,
			Mass: cfg.Particles.MassColumn,
			VX:   cfg.Particles.VXColumn,
			VY:   cfg.Particles.VYColumn,
			VZ:   cfg.Particles.VZColumn,
		},
		Force: force.Params{
			Theta: cfg.Force.Theta,
			G:     cfg.Force.G,
			Eps:   cfg.Force.Softening,
		},
		MaxDepth:    cfg.Force.MaxDepth,
		DirectLimit: cfg.Energy.DirectLimit,
	}

	switch strings.ToLower(cfg.Force.Size) {
	case "x":
		args.Force.Size = force.SizeX
	case "max":
		args.Force.Size = force.SizeMax
	default:
		return nil, fmt.Errorf("Size is set to '%s', but the only valid values are 'x' and 'max'.", cfg.Force.Size)
	}

	switch strings.ToLower(cfg.Force.Degenerate) {
	case "error":
		args.Force.Degenerate = force.DegenerateError
	case "skip":
		args.Force.Degenerate = force.DegenerateSkip
	default:
		return nil, fmt.Errorf("Degenerate is set to '%s', but the only valid values are 'error' and 'skip'.", cfg.Force.Degenerate)
	}

	if args.Threads == -1 {
		args.Threads = runtime.NumCPU()
	}

	// Ranks and rank come from SLURM unless they were given explicitly.
	args.RunMode = SerialMode
	if n, ok := envInt("SLURM_NTASKS"); ok {
		args.RunMode = SlurmMode
		if args.Ranks <= 0 {
			args.Ranks = n
		}
	}
	if args.Ranks <= 0 {
		args.Ranks = 1
	}
	if args.Rank < 0 {
		if i, ok := envInt("SLURM_PROCID"); ok {
			args.Rank = i
		} else {
			args.Rank = 0
		}
	}

	if args.Output == "" {
		args.Output = args.RunName + ".accel.txt"
	}
	if args.Ranks > 1 {
		args.Output = fmt.Sprintf("%s.%d", args.Output, args.Rank)
	}

	return args, nil
}

func envInt(name string) (int, bool) {
	s := getenv(name)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
