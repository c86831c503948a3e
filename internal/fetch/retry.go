package fetch

import (
	"context"
	"errors"
	"time"
)

// RetryFetcher retries temporary failures of the wrapped Fetcher.
// The wrapped fetcher itself never retries; this wrapper is the only place
// a retry policy lives.
type RetryFetcher struct {
	next    Fetcher
	retries int
	backoff time.Duration
}

// NewRetryFetcher wraps next so that temporary failures are retried up to
// retries times, waiting backoff*attempt between attempts.
// A non-positive retries value returns next unchanged.
func NewRetryFetcher(next Fetcher, retries int, backoff time.Duration) Fetcher {
	if retries <= 0 {
		return next
	}
	return &RetryFetcher{
		next:    next,
		retries: retries,
		backoff: backoff,
	}
}

// Fetch calls the wrapped fetcher, retrying temporary *FetchError failures.
func (r *RetryFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 && r.backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, &FetchError{URL: url, Err: ctx.Err()}
			case <-time.After(r.backoff * time.Duration(attempt)):
			}
		}

		body, err := r.next.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isTemporary(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// isTemporary reports whether err is a *FetchError worth retrying.
func isTemporary(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Temporary()
}
