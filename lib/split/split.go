/*package split contains functions for dividing a list of particles into
nearly-equal contiguous chunks, one per worker or rank.*/
package split

import (
	"fmt"
)

// Size returns the number of items (out of n) assigned to chunk i of k. The
// first n % k chunks get one extra item, so Size(1000, 11, 0) = 91 and
// Size(1000, 11, 10) = 90.
func Size(n, k, i int) int {
	size := n / k
	if n%k > i {
		size++
	}
	return size
}

// Range returns the half-open index range [start, end) of chunk i of k over
// n items. Ranges for i = 0, ..., k-1 tile [0, n) in order.
func Range(n, k, i int) (start, end int) {
	start = i*(n/k) + minInt(i, n%k)
	return start, start + Size(n, k, i)
}

// Check returns an error if chunk i of k can't be taken from n items.
func Check(n, k, i int) error {
	if n < 0 {
		return fmt.Errorf("Cannot split %d items.", n)
	} else if k <= 0 {
		return fmt.Errorf("Cannot split items into %d chunks.", k)
	} else if i < 0 || i >= k {
		return fmt.Errorf("Chunk %d is not in the range [0, %d).", i, k)
	}
	return nil
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}
