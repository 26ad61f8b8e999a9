package ann

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a parallel-for over a fixed number of worker goroutines,
// standing in for the OS-thread pool the index build fans out across.
// Goroutines are close enough to that model for this library, and errgroup
// gives first-error propagation for free instead of hand-rolling a shared
// error slot and mutex.
type WorkerPool struct {
	threads int
}

// NewWorkerPool returns a pool that will use threads goroutines for For.
// threads < 1 is treated as 1.
func NewWorkerPool(threads int) *WorkerPool {
	if threads < 1 {
		threads = 1
	}
	return &WorkerPool{threads: threads}
}

// Threads reports the configured worker count.
func (p *WorkerPool) Threads() int { return p.threads }

// For partitions [start, end) into p.threads contiguous chunks, one per
// worker, and calls body(index, threadID) for each index exactly once.
// A chunked, up-front partition (rather than a shared atomic counter) keeps
// the thread assignment for a given index deterministic: with threads=1 and
// a fixed random seed, two builds of the same input assign identical index
// ranges to identical threads and so produce byte-identical saved files.
//
// If body returns an error for any index, no further indices are started
// on that worker, other workers finish their already-started item, and the
// first error observed is returned from For. There is no finer-grained
// cancellation than that.
func (p *WorkerPool) For(ctx context.Context, start, end int, body func(ctx context.Context, index, threadID int) error) error {
	if end <= start {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)

	total := end - start
	threads := p.threads
	if threads > total {
		threads = total
	}
	chunk := (total + threads - 1) / threads

	for t := 0; t < threads; t++ {
		lo := start + t*chunk
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		if lo >= hi {
			continue
		}
		threadID := t
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := body(gctx, i, threadID); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}
