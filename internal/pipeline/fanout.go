package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FanOut calls fn for every item with at most limit calls in flight. A limit of zero or less
// means no bound. Results are written to the slot matching the item's index, so the output
// order is the input order regardless of completion order.
//
// Returning an error from fn cancels the remaining calls. Callers that want per-item failures
// captured on the item should return nil and encode the failure in R instead.
func FanOut[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, index int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := fn(gCtx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
