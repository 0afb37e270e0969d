package lib

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/bhforce/lib/force"
)

// setEnv replaces the environment seen by Process for the rest of the test.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	getenv = func(name string) string { return env[name] }
	t.Cleanup(func() { getenv = os.Getenv })
}

func TestNormalize(t *testing.T) {
	for _, name := range []string{"RunName", "--run-name", "run_name", "RUNNAME"} {
		assert.Equal(t, "runname", normalize(name), name)
	}
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		argv       []string
		mode, file string
		set        map[string]string
		valid      bool
	}{
		{nil, "help", "", map[string]string{}, true},
		{[]string{"help"}, "help", "", map[string]string{}, true},
		{[]string{"accel"}, "", "", nil, false},
		{[]string{"accel", "a.cfg"}, "accel", "a.cfg", map[string]string{}, true},
		{[]string{"accel", "a.cfg", "--theta", "0.7"}, "accel", "a.cfg",
			map[string]string{"theta": "0.7"}, true},
		{[]string{"accel", "a.cfg", "--Run-Name=x", "--max_depth", "3"},
			"accel", "a.cfg",
			map[string]string{"runname": "x", "maxdepth": "3"}, true},
		{[]string{"accel", "a.cfg", "--theta"}, "", "", nil, false},
		{[]string{"accel", "a.cfg", "theta", "0.7"}, "", "", nil, false},
		{[]string{"accel", "a.cfg", "--nonsense", "1"}, "", "", nil, false},
	}

	for i, test := range tests {
		mode, file, raw, err := ParseCommandLine(test.argv)
		if !test.valid {
			assert.Error(t, err, "%d) %v", i, test.argv)
			continue
		}
		require.NoError(t, err, "%d) %v", i, test.argv)
		assert.Equal(t, test.mode, mode, "%d) %v", i, test.argv)
		assert.Equal(t, test.file, file, "%d) %v", i, test.argv)
		assert.Equal(t, test.set, raw.set, "%d) %v", i, test.argv)
	}
}

func TestDefaults(t *testing.T) {
	setEnv(t, nil)

	raw, err := ParseConfigString("")
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)

	assert.Equal(t, "bhforce", args.RunName)
	assert.Equal(t, SerialMode, args.RunMode)
	assert.Equal(t, runtime.NumCPU(), args.Threads)
	assert.Equal(t, "bhforce.accel.txt", args.Output)
	assert.False(t, args.Compress)
	assert.Equal(t, 0, args.Rank)
	assert.Equal(t, 1, args.Ranks)
	assert.Equal(t, "", args.Targets)
	assert.Equal(t, Columns{ID: -1, X: 0, Y: 1, Z: 2, Mass: -1,
		VX: -1, VY: -1, VZ: -1}, args.Columns)
	assert.False(t, args.Columns.HasVelocities())
	assert.Equal(t, force.Params{Theta: 0.5, G: 1, Eps: 0,
		Size: force.SizeX, Degenerate: force.DegenerateError}, args.Force)
	assert.Equal(t, 64, args.MaxDepth)
	assert.Equal(t, 5000, args.DirectLimit)
}

func TestParseConfigFile(t *testing.T) {
	setEnv(t, nil)

	fname := filepath.Join(t.TempDir(), "run.cfg")
	text := `[Run]
RunName = merger
Compress = true
Targets = 0..10 - 3

[Particles]
File = parts.txt
MassColumn = 3
VXColumn = 4
VYColumn = 5
VZColumn = 6

[Force]
Theta = 0.3
Softening = 0.01
Size = max
Degenerate = skip
`
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))

	raw, err := ParseConfigFile(fname)
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)

	assert.Equal(t, "merger", args.RunName)
	assert.Equal(t, "merger.accel.txt", args.Output)
	assert.True(t, args.Compress)
	assert.Equal(t, "0..10 - 3", args.Targets)
	assert.Equal(t, "parts.txt", args.ParticleFile)
	assert.Equal(t, 3, args.Columns.Mass)
	assert.True(t, args.Columns.HasVelocities())
	assert.Equal(t, 0.3, args.Force.Theta)
	assert.Equal(t, 0.01, args.Force.Eps)
	assert.Equal(t, force.SizeMax, args.Force.Size)
	assert.Equal(t, force.DegenerateSkip, args.Force.Degenerate)

	_, err = ParseConfigFile(filepath.Join(t.TempDir(), "missing.cfg"))
	assert.Error(t, err)
	_, err = ParseConfigString("[Force]\nTheta = abc\n")
	assert.Error(t, err)
}

func TestOverwrite(t *testing.T) {
	setEnv(t, nil)

	raw, err := ParseConfigString("[Force]\nTheta = 0.3\nG = 2\n")
	require.NoError(t, err)
	_, _, cmd, err := ParseCommandLine([]string{
		"accel", "a.cfg", "--theta", "0.7", "--run-name=test run",
		"--output", `out "1".txt`,
	})
	require.NoError(t, err)
	require.NoError(t, raw.Overwrite(cmd))

	args, err := raw.Process()
	require.NoError(t, err)
	assert.Equal(t, 0.7, args.Force.Theta)
	assert.Equal(t, 2.0, args.Force.G)
	assert.Equal(t, "test run", args.RunName)
	assert.Equal(t, `out "1".txt`, args.Output)

	_, _, cmd, err = ParseCommandLine([]string{"accel", "a.cfg", "--threads", "abc"})
	require.NoError(t, err)
	assert.Error(t, raw.Overwrite(cmd))
}

func TestProcessSlurm(t *testing.T) {
	setEnv(t, map[string]string{"SLURM_NTASKS": "4", "SLURM_PROCID": "2"})

	raw, err := ParseConfigString("")
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)
	assert.Equal(t, SlurmMode, args.RunMode)
	assert.Equal(t, 4, args.Ranks)
	assert.Equal(t, 2, args.Rank)
	assert.Equal(t, "bhforce.accel.txt.2", args.Output)

	// Explicit values win over the environment.
	raw, err = ParseConfigString("[Run]\nRank = 0\nRanks = 2\n")
	require.NoError(t, err)
	args, err = raw.Process()
	require.NoError(t, err)
	assert.Equal(t, 2, args.Ranks)
	assert.Equal(t, 0, args.Rank)
	assert.Equal(t, "bhforce.accel.txt.0", args.Output)
}

func TestProcessErrors(t *testing.T) {
	setEnv(t, nil)

	for _, text := range []string{
		"[Force]\nSize = diagonal\n",
		"[Force]\nDegenerate = ignore\n",
	} {
		raw, err := ParseConfigString(text)
		require.NoError(t, err, text)
		_, err = raw.Process()
		assert.Error(t, err, text)
	}
}
