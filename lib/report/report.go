/*package report writes the accelerations computed by a run to text tables,
optionally compressed with zstd.*/
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/DataDog/zstd"
	"gonum.org/v1/gonum/spatial/r3"
)

// CompressedExt is appended to the names of compressed tables.
const CompressedExt = ".zst"

// compressionLevel is the zstd level tables are written at.
const compressionLevel = 3

// Header describes the run that produced a table. Energy fields are only
// written if HasEnergy is set.
type Header struct {
	RunName   string
	Particles int // Particles in the whole catalog.
	Rows      int // Rows in this table.
	Workers   int
	Rank      int
	Ranks     int
	Theta     float64
	G         float64
	Softening float64
	Elapsed   time.Duration
	Time      time.Time

	HasEnergy               bool
	Kinetic, Potential, Sum float64
}

// Write writes a table of accelerations to wr. Each row is "id ax ay az".
func Write(wr io.Writer, hd Header, ids []int, acc []r3.Vec) error {
	if len(ids) != len(acc) {
		return fmt.Errorf("Given %d ids but %d accelerations.", len(ids), len(acc))
	}

	hd.Rows = len(ids)
	bw := bufio.NewWriter(wr)
	writeHeader(bw, hd)
	for i := range ids {
		fmt.Fprintf(bw, "%d\t%+.8e\t%+.8e\t%+.8e\n",
			ids[i], acc[i].X, acc[i].Y, acc[i].Z)
	}
	return bw.Flush()
}

func writeHeader(wr io.Writer, hd Header) {
	fmt.Fprintf(wr, "# Run Name: %s\n", hd.RunName)
	fmt.Fprintf(wr, "# Num Particles: %d\n", hd.Particles)
	fmt.Fprintf(wr, "# Num Rows: %d\n", hd.Rows)
	fmt.Fprintf(wr, "# Num Workers: %d\n", hd.Workers)
	fmt.Fprintf(wr, "# Rank: %d of %d\n", hd.Rank, hd.Ranks)
	fmt.Fprintf(wr, "# Theta: %g\n", hd.Theta)
	fmt.Fprintf(wr, "# G: %g\n", hd.G)
	fmt.Fprintf(wr, "# Softening: %g\n", hd.Softening)
	if hd.HasEnergy {
		fmt.Fprintf(wr, "# Kinetic Energy: %.6e\n", hd.Kinetic)
		fmt.Fprintf(wr, "# Potential Energy: %.6e\n", hd.Potential)
		fmt.Fprintf(wr, "# Total Energy: %.6e\n", hd.Sum)
	}
	fmt.Fprintf(wr, "# Current Time: %s\n", hd.Time.Format(time.RFC3339))
	fmt.Fprintf(wr, "# Elapsed Time: %s\n", hd.Elapsed)
	fmt.Fprintf(wr, "#\n# id\tax\tay\taz\n")
}

// WriteFile writes a table to the named file. If compress is true, the table
// is zstd-compressed and CompressedExt is appended to the name. The name of
// the file that was written is returned.
func WriteFile(
	fname string, compress bool, hd Header, ids []int, acc []r3.Vec,
) (string, error) {
	buf := &bytes.Buffer{}
	if err := Write(buf, hd, ids, acc); err != nil {
		return "", err
	}

	data := buf.Bytes()
	if compress {
		var err error
		data, err = zstd.CompressLevel(nil, data, compressionLevel)
		if err != nil {
			return "", err
		}
		if !strings.HasSuffix(fname, CompressedExt) {
			fname += CompressedExt
		}
	}

	return fname, os.WriteFile(fname, data, 0644)
}

// ReadFile returns the text of a table written by WriteFile, decompressing
// it if the name ends in CompressedExt.
func ReadFile(fname string) ([]byte, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(fname, CompressedExt) {
		return zstd.Decompress(nil, data)
	}
	return data, nil
}
