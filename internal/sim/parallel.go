package sim

import (
	"context"
	"sync"
)

// Ensemble flies several independent engines concurrently, one goroutine
// per engine, seeded seedStart, seedStart+1, ...
type Ensemble struct {
	numRuns   int
	seedStart int64
	opts      []Option
}

func NewEnsemble(numRuns int, seedStart int64, opts ...Option) *Ensemble {
	return &Ensemble{numRuns: numRuns, seedStart: seedStart, opts: opts}
}

// Run flies every member for seconds under cmd and returns the final
// results in seed order. ctx is checked as each member is launched and
// again when its goroutine begins; a member already flying runs to
// completion. If ctx ends before every member has begun, ctx.Err() is
// returned.
func (e *Ensemble) Run(ctx context.Context, seconds float64, cmd Command, stepDt float64) ([]StepResult, error) {
	results := make([]StepResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			eng, err := New(e.seedStart+int64(idx), e.opts...)
			if err != nil {
				errs[idx] = err
				return
			}

			results[idx], errs[idx] = eng.RunFor(seconds, cmd, stepDt)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
