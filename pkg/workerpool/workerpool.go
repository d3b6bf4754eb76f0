// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Process runs process for every item on workerCount goroutines. A failing item
// does not stop the others; all errors are combined. Items not handed out
// before ctx is done are skipped and the context error is included.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
) error {
	if workerCount < 1 {
		workerCount = 1
	}

	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)
	tasks := make(chan T)
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if err := process(ctx, item); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()

	return multierr.Append(errs, ctx.Err())
}
