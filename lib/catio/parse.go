package catio

import (
	"strconv"
)

// parseInt parses a catalog token as an int. Integral values written in
// floating point notation (e.g. "1e6" or "12.0") are accepted, since many
// catalog writers print every column that way.
func parseInt(tok []byte) (int, error) {
	s := string(tok)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}

	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	i := int(x)
	if float64(i) != x {
		return 0, &strconv.NumError{Func: "parseInt", Num: s, Err: strconv.ErrSyntax}
	}
	return i, nil
}

func parseFloat64(tok []byte) (float64, error) {
	return strconv.ParseFloat(string(tok), 64)
}
