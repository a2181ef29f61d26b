// Package parallel provides the fork-join primitive used by the parallel
// trainer and block codec: split an index range into contiguous shards,
// run one goroutine per shard and join them before returning.
package parallel

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrWorkerPanic is returned when a shard function panics.
var ErrWorkerPanic = errors.New("parallel: worker panic")

// Range is the half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// Threads returns max(1, min(parallelism, n)).
func Threads(parallelism, n int) int {
	t := min(parallelism, n)
	if t < 1 {
		return 1
	}
	return t
}

// Split partitions [0, n) into Threads(parallelism, n) contiguous,
// non-empty, balanced shards. It returns nil when n <= 0.
func Split(n, parallelism int) []Range {
	if n <= 0 {
		return nil
	}
	threads := Threads(parallelism, n)
	shards := make([]Range, threads)
	for i := range shards {
		shards[i] = Range{
			Start: i * n / threads,
			End:   (i + 1) * n / threads,
		}
	}
	return shards
}

// Run executes fn once per shard on its own goroutine and waits for all
// of them. The first error cancels the context handed to the other shards
// and is returned wrapped with the stage name and shard bounds. Shard
// functions should poll ctx in long loops.
func Run(ctx context.Context, stage string, shards []Range, fn func(ctx context.Context, shard int, r Range) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range shards {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%s: shard %d [%d,%d): %w: %v", stage, i, r.Start, r.End, ErrWorkerPanic, p)
				}
			}()
			if err := fn(gctx, i, r); err != nil {
				return fmt.Errorf("%s: shard %d [%d,%d): %w", stage, i, r.Start, r.End, err)
			}
			return nil
		})
	}
	return g.Wait()
}
