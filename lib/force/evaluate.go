package force

/* evaluate.go contains functions for evaluating many particles at once. */

import (
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/split"
	"github.com/phil-mansfield/bhforce/lib/tree"
)

// Evaluator computes the acceleration on a single particle.
type Evaluator func(id int) (r3.Vec, error)

// TreeEvaluator returns an Evaluator which calls Acceleration on t.
func TreeEvaluator(t *tree.Tree, p Params) Evaluator {
	return func(id int) (r3.Vec, error) { return Acceleration(t, id, p) }
}

// DirectEvaluator returns an Evaluator which calls Direct on t.
func DirectEvaluator(t *tree.Tree, p Params) Evaluator {
	return func(id int) (r3.Vec, error) { return Direct(t, id, p) }
}

// Evaluate runs eval on every id, splitting ids into contiguous chunks that
// are handled by separate goroutines. Results are returned in the same order
// as ids. If any evaluation fails, the error of the earliest failing chunk
// is returned. workers <= 0 means runtime.GOMAXPROCS(0).
//
// eval must be safe to call concurrently. The Evaluators in this package are,
// as long as nothing modifies the tree while Evaluate runs.
func Evaluate(ids []int, eval Evaluator, workers int) ([]r3.Vec, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	out := make([]r3.Vec, len(ids))
	if workers == 0 {
		return out, nil
	}

	t0 := time.Now()
	errs := make([]error, workers)
	wg := &sync.WaitGroup{}
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			start, end := split.Range(len(ids), workers, w)
			for i := start; i < end; i++ {
				acc, err := eval(ids[i])
				if err != nil {
					errs[w] = err
					return
				}
				out[i] = acc
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"particles": len(ids),
		"workers":   workers,
		"elapsed":   time.Since(t0),
	}).Debug("Evaluated accelerations.")

	return out, nil
}
