package split

import (
	"testing"
)

func TestSize(t *testing.T) {
	tests := []struct {
		n, k, i, size int
	}{
		{1000, 11, 0, 91}, {1000, 11, 10, 90}, {1000, 11, 9, 90},
		{10, 3, 0, 4}, {10, 3, 1, 3}, {10, 3, 2, 3},
		{2, 4, 0, 1}, {2, 4, 1, 1}, {2, 4, 2, 0}, {2, 4, 3, 0},
		{0, 3, 1, 0}, {7, 1, 0, 7},
	}

	for j := range tests {
		size := Size(tests[j].n, tests[j].k, tests[j].i)
		if size != tests[j].size {
			t.Errorf("%d) Expected Size(%d, %d, %d) = %d, got %d.", j,
				tests[j].n, tests[j].k, tests[j].i, tests[j].size, size)
		}
	}
}

func TestRangeTiles(t *testing.T) {
	for n := 0; n < 40; n++ {
		for k := 1; k < 9; k++ {
			prevEnd, sum := 0, 0
			for i := 0; i < k; i++ {
				start, end := Range(n, k, i)
				if start != prevEnd {
					t.Errorf("Range(%d, %d, %d) starts at %d, expected %d.",
						n, k, i, start, prevEnd)
				}
				if end-start != Size(n, k, i) {
					t.Errorf("Range(%d, %d, %d) = [%d, %d) doesn't match Size %d.",
						n, k, i, start, end, Size(n, k, i))
				}
				prevEnd = end
				sum += Size(n, k, i)
			}
			if prevEnd != n || sum != n {
				t.Errorf("Chunks of (%d, %d) end at %d with total %d.",
					n, k, prevEnd, sum)
			}
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		n, k, i int
		ok      bool
	}{
		{10, 2, 0, true}, {10, 2, 1, true}, {0, 1, 0, true},
		{-1, 2, 0, false}, {10, 0, 0, false}, {10, 2, 2, false},
		{10, 2, -1, false},
	}

	for j := range tests {
		err := Check(tests[j].n, tests[j].k, tests[j].i)
		if (err == nil) != tests[j].ok {
			t.Errorf("%d) Check(%d, %d, %d) returned %v.", j,
				tests[j].n, tests[j].k, tests[j].i, err)
		}
	}
}
