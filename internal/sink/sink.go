// Where scraped records go. The crawler produces batches per page; sinks
// decide what to do with them: print, save, store, notify.

package sink

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go-zhipin-crawler/internal/crawl"
)

// Sink receives batches of scraped jobs.
type Sink interface {
	// Emit delivers one batch. Batches arrive in scan order.
	Emit(ctx context.Context, jobs []crawl.Job) error

	// Close flushes and releases the sink.
	Close(ctx context.Context) error
}

// Multi fans each batch out to every sink concurrently and reports the
// first failure.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, jobs []crawl.Job) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m {
		s := s
		g.Go(func() error { return s.Emit(ctx, jobs) })
	}
	return g.Wait()
}

func (m Multi) Close(ctx context.Context) error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
