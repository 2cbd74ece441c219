// Package parallel provides the fixed-size worker pool shared by the broad
// phase, the narrow phase and the assembly engine.
//
// Work is always split into contiguous index ranges, one per worker, so a
// caller that keeps one private accumulator per worker and merges them in
// worker order gets results that only depend on the worker count.
package parallel

import "golang.org/x/sync/errgroup"

// DefaultWorkers is used when a caller passes a non-positive worker count.
const DefaultWorkers = 1

// Workers returns the effective worker count for a requested value.
func Workers(requested int) int {
	return max(DefaultWorkers, requested)
}

// For splits [0, n) into Workers(workers) contiguous chunks and calls fn once
// per non-empty chunk, concurrently. fn receives the chunk's worker index,
// which is stable for a given (workers, n) pair.
func For(workers, n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)
	chunkSize := (n + workers - 1) / workers

	if workers == 1 {
		fn(0, 0, n)
		return
	}

	var g errgroup.Group
	for worker := 0; worker < workers; worker++ {
		start, end := worker*chunkSize, min((worker+1)*chunkSize, n)
		if start >= end {
			continue
		}
		g.Go(func() error {
			fn(worker, start, end)
			return nil
		})
	}
	_ = g.Wait()
}
