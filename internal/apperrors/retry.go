package apperrors

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy describes exponential backoff with full jitter for transient
// storage errors. Conflicts and validation errors are returned immediately.
type RetryPolicy struct {
	Attempts int
	BaseWait time.Duration
	MaxWait  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	Attempts: 3,
	BaseWait: 100 * time.Millisecond,
	MaxWait:  2 * time.Second,
}

// Retry runs fn up to p.Attempts times, sleeping between attempts when fn
// returned a retryable error. The context cancels the wait.
func (p RetryPolicy) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	wait := p.BaseWait
	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err = fn(ctx); err == nil || !Retryable(err) {
			return err
		}
		if attempt == p.Attempts-1 {
			break
		}
		// Full jitter: sleep a random duration in [0, wait).
		sleep := time.Duration(rand.Int63n(int64(wait) + 1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		wait *= 2
		if wait > p.MaxWait {
			wait = p.MaxWait
		}
	}
	return err
}
