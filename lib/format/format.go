/*package format handles bhforce's sequence format strings, which select the
particles a run computes accelerations for:

   Targets = 0..100000 - 63 - 10..20

Sequence formats are a generic way to specify non-contiguous sets of natural
numbers. They consist of a series of tokens separated by "+" or "-". Each
token can be either a number or two numbers separated by "..", which includes
both ends. E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

Every "+" token is added before any "-" token is removed. Adding a number
twice or removing a number that was never added is an error, since it's
almost always a typo. All spaces around "-" and "+" are ignored. Because "-"
is an operator, negative numbers can't be written.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BigNumber is the largest sequence that will be expanded. Anything larger is
// assumed to be a bug.
const BigNumber = 1 << 26

// ExpandSequenceFormat expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil {
		return nil, err
	}

	set := map[int]bool{}
	for _, tok := range adds {
		start, end := sequenceFormatBounds(tok)
		// end-start can't overflow since start >= 0, but end-start+1 can.
		if end-start >= BigNumber-len(set) {
			return nil, fmt.Errorf("The sequence '%s' has more than %d elements, which is almost certainly a bug.", format, BigNumber)
		}
		for n := start; ; n++ {
			if set[n] {
				return nil, fmt.Errorf("The number %d is added more than once.", n)
			}
			set[n] = true
			if n == end {
				break
			}
		}
	}

	for _, tok := range subs {
		start, end := sequenceFormatBounds(tok)
		for n := start; ; n++ {
			if !set[n] {
				return nil, fmt.Errorf("The number %d is removed more times than it was added.", n)
			}
			delete(set, n)
			if n == end {
				break
			}
		}
	}

	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// tokeniseSequenceFormat splits a sequence format string into number/range
// tokens and operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

// addsSubsSequenceFormat sorts tokens into those which are added to the
// sequence and those which are removed from it. A leading "+" may be dropped.
func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("Format string is empty")
	}

	adds, subs = []string{}, []string{}
	start := 0
	if tok[0] != "+" && tok[0] != "-" {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number 1, '%s', cannot be parsed because %s", tok[0], err)
		}
		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		}
		if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'", tok[i])
		}
		if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error if tok is a valid token for a
// sequence format and an error describing the problem otherwise. The message
// is written to follow a "because".
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the token is empty.")
	}

	bounds := strings.Split(tok, "..")
	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// sequenceFormatBounds returns the inclusive range covered by a token that
// has already passed isSequenceFormatToken.
func sequenceFormatBounds(tok string) (start, end int) {
	bounds := strings.Split(tok, "..")
	start, _ = strconv.Atoi(bounds[0])
	if len(bounds) == 1 {
		return start, start
	}
	end, _ = strconv.Atoi(bounds[1])
	return start, end
}
