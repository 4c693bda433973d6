package concurrent

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Each runs action for every element in a separate goroutine and waits for all of
// them. The context passed to action is cancelled as soon as one action fails; the
// first error is returned.
func Each[T any](ctx context.Context, items []T, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error {
			return action(gctx, item)
		})
	}
	return g.Wait()
}

// Map applies mapFn to every element with at most workers goroutines, preserving
// order. Results computed before a failure are kept; the first error is returned.
func Map[T any, R any](ctx context.Context, items []T, workers int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for idx, item := range items {
		g.Go(func() error {
			r, err := mapFn(gctx, item)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	return out, g.Wait()
}

// ParallelMust runs action for every element in a separate goroutine.
func ParallelMust[T any](items []T, action func(T)) {
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(v T) {
			defer wg.Done()
			action(v)
		}(item)
	}
	wg.Wait()
}
