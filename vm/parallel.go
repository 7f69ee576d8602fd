package vm

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/deepnoodle-ai/shade/bytecode"
)

// ForEach runs fn for every item index in [0, n) using a pool of workers.
// Each worker owns one Executor created with the given options, so fn can
// drive the shared program without locking. Executor globals are private to
// the worker; globals shared between items must be synchronized by the
// caller.
//
// The first error cancels the context passed to the remaining calls and is
// returned once all workers have stopped.
func ForEach(
	ctx context.Context,
	program *bytecode.Program,
	n, workers int,
	fn func(ctx context.Context, e *Executor, item int) error,
	options ...Option,
) error {
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		e := New(program, options...)
		g.Go(func() error {
			for item := range jobs {
				e.Reset()
				if err := fn(ctx, e, item); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
