// Package fanout calls a function once per item with a cap on how many calls
// run at once. It backs the aggregate endpoint, where one inbound request
// becomes several upstream GETs that must all carry the caller's metadata.
package fanout

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Result is the outcome for one item: Value on success, Err otherwise.
type Result[R any] struct {
	Value R
	Err   error
}

// Run calls fn for every item, at most limit at a time, and returns results
// indexed like items. Each call gets ctx unchanged, so a metadata binding on
// ctx is shared by every worker.
//
// An item still waiting for a slot when ctx ends records ctx.Err() without
// calling fn. A limit below 1 runs items one at a time. Run returns only
// after every started call has returned.
func Run[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	sem := semaphore.NewWeighted(int64(max(limit, 1)))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Go(func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i].Err = err
				return
			}
			defer sem.Release(1)

			results[i].Value, results[i].Err = fn(ctx, item)
		})
	}

	wg.Wait()
	return results
}
