package pipeline

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a failed write is repeated. Retryable decides
// which errors qualify; nil means every error does.
type RetryPolicy struct {
	Attempts  int
	Initial   time.Duration
	Max       time.Duration
	Retryable func(error) bool
}

// NoRetry performs each write exactly once.
var NoRetry = RetryPolicy{Attempts: 1}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The delay doubles after each failure up to Max; a
// zero Max leaves the doubling unbounded. It returns the number of retries
// performed.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) (int, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := policy.Initial
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return i - 1, ctx.Err()
			}
			delay = nextDelay(delay, policy.Max)
		}
		if err = fn(); err == nil {
			return i, nil
		}
		if ctx.Err() != nil || (policy.Retryable != nil && !policy.Retryable(err)) {
			return i, err
		}
	}
	return attempts - 1, err
}

func nextDelay(delay, limit time.Duration) time.Duration {
	delay *= 2
	if limit > 0 && delay > limit {
		return limit
	}
	return delay
}
