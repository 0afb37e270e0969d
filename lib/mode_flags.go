package lib

// RunMode indicates whether bhforce is running as a single process or as one
// rank of a SLURM job array.
type RunMode int

const (
	SerialMode RunMode = iota
	SlurmMode
)

func (m RunMode) String() string {
	switch m {
	case SerialMode:
		return "serial"
	case SlurmMode:
		return "slurm"
	}
	return "unknown"
}

// CheckStrictness indicates how Check should behave when it encounters a
// problem.
type CheckStrictness int

const (
	CrashOnError CheckStrictness = iota
	WarnOnError
)
