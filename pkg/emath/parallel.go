package emath

import (
	"runtime"
	"sync"
)

// Grids smaller than this many rows aren't worth the goroutines.
const minParallelRows = 64

// ParallelFor splits [0, n) into contiguous chunks, one per CPU, and
// calls fn(start, end) for each chunk concurrently. It blocks until
// every chunk is done. fn must only touch its own slice of the output.
func ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers == 1 || n < minParallelRows {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
