package service

import (
	"context"
	"time"
)

// readRetryDelay is the backoff before the single retry of a read-only
// venue call. Order submission is never retried anywhere: a duplicate send
// can double real-money exposure. Quote fetches and position queries are
// idempotent, so one retry is safe.
const readRetryDelay = 100 * time.Millisecond

// retryRead runs fn and, on error, retries it exactly once after a short
// backoff. Only pass read-only operations.
func retryRead[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil {
		return v, nil
	}

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-time.After(readRetryDelay):
	}

	return fn(ctx)
}
