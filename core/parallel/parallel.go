// Package parallel provides chunked worker execution for row and column
// loops inside stage implementations.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across one worker per available CPU core and
// runs fn on each half-open range [start, end). It blocks until every
// worker returns. fn must not touch indices outside its range; callers
// rely on that for lock-free writes into shared slices and matrices.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}

	// Ceiling division so the last chunk absorbs the remainder.
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the full range when
// items is at or below threshold, and falls back to Parallelize above it.
// Goroutine startup dominates for the small matrices common in short
// pipeline stages, so most loops go through this entry point.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
