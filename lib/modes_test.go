package lib

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/catio"
	"github.com/phil-mansfield/bhforce/lib/force"
	"github.com/phil-mansfield/bhforce/lib/report"
	"github.com/phil-mansfield/bhforce/lib/tree"
)

// writeCatalog writes n random particles with columns "id x y z m vx vy vz"
// to dir and returns the file's name. Ids start at 100.
func writeCatalog(t *testing.T, dir string, n int, seed int64) string {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	sb := &strings.Builder{}
	fmt.Fprintln(sb, "# id x y z m vx vy vz")
	for i := 0; i < n; i++ {
		fmt.Fprintf(sb, "%d %.17g %.17g %.17g %.17g %.17g %.17g %.17g\n", 100+i,
			rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(),
			0.5+rng.Float64(),
			rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
	}

	fname := filepath.Join(dir, "parts.txt")
	require.NoError(t, os.WriteFile(fname, []byte(sb.String()), 0644))
	return fname
}

// testArgs returns processed Args for the catalog written by writeCatalog.
func testArgs(t *testing.T, n int, extra string) *Args {
	t.Helper()
	setEnv(t, nil)

	dir := t.TempDir()
	cat := writeCatalog(t, dir, n, 1)
	text := fmt.Sprintf(`[Run]
Output = "%s"
Threads = 2
%s
[Particles]
File = "%s"
IDColumn = 0
XColumn = 1
YColumn = 2
ZColumn = 3
MassColumn = 4
VXColumn = 5
VYColumn = 6
VZColumn = 7

[Force]
Theta = 0.5
Softening = 0.01
`, filepath.Join(dir, "acc.txt"), extra, cat)

	raw, err := ParseConfigString(text)
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)
	return args
}

func TestAccel(t *testing.T) {
	args := testArgs(t, 200, "Targets = 100..299 - 150..160")

	fname, err := Accel(args)
	require.NoError(t, err)
	assert.Equal(t, args.Output, fname)

	data, err := report.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Num Particles: 200\n")
	assert.Contains(t, string(data), "# Total Energy: ")

	cols, err := catio.Text(data).ReadFloat64s([]int{0, 1, 2, 3})
	require.NoError(t, err)
	require.Len(t, cols[0], 189)

	cat, err := LoadParticles(args)
	require.NoError(t, err)
	tr, err := tree.Build(cat.Particles)
	require.NoError(t, err)

	for i := range cols[0] {
		id := int(cols[0][i])
		assert.False(t, id >= 150 && id <= 160, "id %d should be excluded", id)

		exact, err := force.Acceleration(tr, id, args.Force)
		require.NoError(t, err)
		got := r3.Vec{X: cols[1][i], Y: cols[2][i], Z: cols[3][i]}
		assert.LessOrEqual(t, r3.Norm(r3.Sub(got, exact)), 1e-7*r3.Norm(exact),
			"id %d", id)
	}
}

func TestAccelRanks(t *testing.T) {
	args := testArgs(t, 50, "Ranks = 3\nRank = 2\nCompress = true")
	require.True(t, strings.HasSuffix(args.Output, ".2"))

	fname, err := Accel(args)
	require.NoError(t, err)
	assert.Equal(t, args.Output+report.CompressedExt, fname)

	data, err := report.ReadFile(fname)
	require.NoError(t, err)
	ids, err := catio.Text(data).ReadInts([]int{0})
	require.NoError(t, err)

	// 50 = 17 + 17 + 16
	expected := []int{}
	for id := 134; id < 150; id++ {
		expected = append(expected, id)
	}
	assert.Equal(t, expected, ids[0])
}

func TestAccelErrors(t *testing.T) {
	args := testArgs(t, 10, "")
	args.Force.Theta = -1
	_, err := Accel(args)
	assert.ErrorIs(t, err, force.ErrInvalidParams)

	args = testArgs(t, 10, "Targets = 0..3")
	_, err = Accel(args)
	assert.Error(t, err)

	args = testArgs(t, 10, "")
	args.ParticleFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = Accel(args)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	args := testArgs(t, 100, "")
	args.Force.Theta = 1e-9

	c, err := Compare(args)
	require.NoError(t, err)
	assert.Equal(t, 100, c.Targets)
	assert.True(t, c.HasRef)
	assert.Less(t, c.MaxTree, 1e-9)
	assert.Less(t, c.MaxRef, 1e-9)
	assert.LessOrEqual(t, c.MeanTree, c.MaxTree)

	args.Force.Theta = 0.7
	c, err = Compare(args)
	require.NoError(t, err)
	assert.Greater(t, c.MaxTree, 0.0)
	assert.Less(t, c.MeanTree, 0.1)
}

func TestEnergy(t *testing.T) {
	setEnv(t, nil)
	dir := t.TempDir()
	fname := filepath.Join(dir, "pair.txt")
	require.NoError(t, os.WriteFile(fname, []byte(
		"0 0 0 1 1 0 0\n1 0 0 1 0 0 0\n"), 0644))

	raw, err := ParseConfigString(fmt.Sprintf(`[Particles]
File = "%s"
VXColumn = 4
VYColumn = 5
VZColumn = 6
`, fname))
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)

	e, err := Energy(args)
	require.NoError(t, err)
	assert.Equal(t, "direct", e.Method)
	assert.InDelta(t, 0.5, e.Kinetic, 1e-12)
	assert.InDelta(t, -1.0, e.Potential, 1e-12)
	assert.InDelta(t, -0.5, e.Total, 1e-12)

	args.Columns.VX, args.Columns.VY, args.Columns.VZ = -1, -1, -1
	_, err = Energy(args)
	assert.Error(t, err)
}

func TestCompareCoincident(t *testing.T) {
	setEnv(t, nil)
	fname := filepath.Join(t.TempDir(), "pair.txt")
	require.NoError(t, os.WriteFile(fname, []byte(
		"1 1 1\n1 1 1\n0 0 0\n"), 0644))

	raw, err := ParseConfigString(fmt.Sprintf(`[Particles]
File = "%s"

[Force]
Softening = 0.1
`, fname))
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)

	// The tree and direct sums handle the coincident pair, gonum's octree
	// doesn't.
	_, t0, err := load(args)
	require.NoError(t, err)
	_, err = force.NewReference(t0, args.Force)
	require.Error(t, err)

	c, err := Compare(args)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Targets)
	assert.False(t, c.HasRef)
	assert.True(t, math.IsNaN(c.MeanRef))
	assert.True(t, math.IsNaN(c.MaxRef))
	assert.Less(t, c.MaxTree, 1e-12)
}

func TestEnergyMethods(t *testing.T) {
	args := testArgs(t, 300, "")
	args.Force.Eps = 0.1

	direct, err := Energy(args)
	require.NoError(t, err)
	assert.Equal(t, "direct", direct.Method)

	// Above DirectLimit, the tree potential is used, even with unequal
	// masses, and converges to the direct sum as theta shrinks.
	args.DirectLimit = 10
	tests := []struct {
		theta, eps float64
	}{
		{1e-12, 1e-10},
		{0.5, 1e-2},
	}
	for _, test := range tests {
		args.Force.Theta = test.theta
		e, err := Energy(args)
		require.NoError(t, err, "theta = %g", test.theta)
		assert.Equal(t, "tree", e.Method)
		assert.InEpsilon(t, direct.Potential, e.Potential, test.eps,
			"theta = %g", test.theta)
		assert.Equal(t, direct.Kinetic, e.Kinetic)
		assert.Equal(t, e.Kinetic+e.Potential, e.Total)
	}
}
