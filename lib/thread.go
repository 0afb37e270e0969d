package lib

/* thread.go contains functions useful for multi-threading. */

import (
	"fmt"
	"runtime"
)

// SetThreads sets the number of threads bhforce runs on. n = -1 uses every
// core on the node.
func SetThreads(n int) error {
	if n == -1 {
		n = runtime.NumCPU()
	}
	if n <= 0 {
		return fmt.Errorf("Threads is set to %d, but it must be positive or -1.", n)
	}
	if n > runtime.NumCPU() {
		return fmt.Errorf("%d threads requested, but your system only has %d cores per node. If you want bhforce to use the maximum number of threads per node, set Threads=-1.", n, runtime.NumCPU())
	}

	runtime.GOMAXPROCS(n)
	return nil
}
