/*package catio reads columns out of text particle catalogs.*/
package catio

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// TextConfig contains information neccessary for parsing text catalogs.
type TextConfig struct {
	Separator byte // Character used to separated fields
	Comment   byte // Character used to start comments.
	SkipLines int  // Number of lines to skip at the start of file.
}

// DefaultConfig reads whitespace-separated files with '#' comments.
var DefaultConfig = TextConfig{
	Separator: ' ',
	Comment:   '#',
	SkipLines: 0,
}

// Reader allows the user to access the columns of a text catalog.
type Reader interface {
	// Rows returns the number of non-empty, non-comment rows.
	Rows() int
	// ReadInts and ReadFloat64s return the requested columns, in the order
	// requested. Column indices start at zero.
	ReadInts(columns []int) ([][]int, error)
	ReadFloat64s(columns []int) ([][]float64, error)
}

// TextFile creates a Reader for a text catalog on disk.
func TextFile(fname string, config ...TextConfig) (Reader, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return TextStream(f, config...)
}

// TextStream creates a Reader for a catalog read from an io.Reader.
func TextStream(rd io.Reader, config ...TextConfig) (Reader, error) {
	text, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return Text(text, config...), nil
}

// Text creates a Reader for a block of text.
func Text(text []byte, config ...TextConfig) Reader {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	return newTextReader(text, cfg)
}

type row struct {
	line   int // line number in the original text, starting from 1
	fields [][]byte
}

type textReader struct {
	config TextConfig
	rows   []row
}

func newTextReader(text []byte, config TextConfig) *textReader {
	t := &textReader{config: config}

	lines := bytes.Split(text, []byte{'\n'})
	for i, line := range lines {
		if i < config.SkipLines {
			continue
		}
		if j := bytes.IndexByte(line, config.Comment); j != -1 {
			line = line[:j]
		}
		fields := t.fields(line)
		if len(fields) == 0 {
			continue
		}
		t.rows = append(t.rows, row{i + 1, fields})
	}

	return t
}

// fields splits a line on the separator, dropping empty fields. A space
// separator also splits on tabs and carriage returns.
func (t *textReader) fields(line []byte) [][]byte {
	if t.config.Separator == ' ' {
		return bytes.Fields(line)
	}

	out := [][]byte{}
	for _, f := range bytes.Split(line, []byte{t.config.Separator}) {
		if f = bytes.TrimSpace(f); len(f) > 0 {
			out = append(out, f)
		}
	}
	return out
}

func (t *textReader) Rows() int { return len(t.rows) }

func (t *textReader) ReadInts(columns []int) ([][]int, error) {
	out := make([][]int, len(columns))
	for i := range out {
		out[i] = make([]int, len(t.rows))
	}

	for j, r := range t.rows {
		for i, col := range columns {
			tok, err := t.field(r, col)
			if err != nil {
				return nil, err
			}
			if out[i][j], err = parseInt(tok); err != nil {
				return nil, fmt.Errorf("Line %d, column %d: %w", r.line, col, err)
			}
		}
	}
	return out, nil
}

func (t *textReader) ReadFloat64s(columns []int) ([][]float64, error) {
	out := make([][]float64, len(columns))
	for i := range out {
		out[i] = make([]float64, len(t.rows))
	}

	for j, r := range t.rows {
		for i, col := range columns {
			tok, err := t.field(r, col)
			if err != nil {
				return nil, err
			}
			if out[i][j], err = parseFloat64(tok); err != nil {
				return nil, fmt.Errorf("Line %d, column %d: %w", r.line, col, err)
			}
		}
	}
	return out, nil
}

func (t *textReader) field(r row, col int) ([]byte, error) {
	if col < 0 || col >= len(r.fields) {
		return nil, fmt.Errorf("Line %d has %d columns, so column %d can't be read.",
			r.line, len(r.fields), col)
	}
	return r.fields[col], nil
}
