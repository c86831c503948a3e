package fetch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// LimitedFetcher bounds the number of concurrent requests made through the
// wrapped Fetcher. Parallel tree branches share one LimitedFetcher so that
// the remote host sees at most n requests at a time.
type LimitedFetcher struct {
	next Fetcher
	sem  *semaphore.Weighted
}

// NewLimitedFetcher wraps next with an in-flight limit of n.
// A non-positive n returns next unchanged.
func NewLimitedFetcher(next Fetcher, n int) Fetcher {
	if n <= 0 {
		return next
	}
	return &LimitedFetcher{
		next: next,
		sem:  semaphore.NewWeighted(int64(n)),
	}
}

// Fetch waits for a free slot, then calls the wrapped fetcher.
func (l *LimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer l.sem.Release(1)

	return l.next.Fetch(ctx, url)
}
