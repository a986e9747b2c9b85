package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelPixels is the smallest workload split across goroutines.
// Below it the scheduling overhead outweighs the gain.
const minParallelPixels = 16384

// parallelFor calls fn over [0, n) in contiguous chunks. Chunks run
// concurrently when the workload (n lines of lineLen samples) is large
// enough. Each chunk must only write its own lines.
func parallelFor(ctx context.Context, n, lineLen int, fn func(start, end int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers <= 1 || n*lineLen < minParallelPixels {
		fn(0, n)
		return nil
	}

	parent := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// a few chunks per worker keeps the tail short
	chunk := max(1, (n+workers*4-1)/(workers*4))
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
