package common

import (
	"context"
	"log/slog"
)

// attempt bounds for any provider binding
const (
	MinAttempts = 1
	MaxAttempts = 5
)

// RetryPolicy bounds how many build+send cycles one call may use
type RetryPolicy struct {
	// MaxAttempts counts every attempt including the first
	MaxAttempts int
}

// Attempts returns MaxAttempts clamped to [MinAttempts, MaxAttempts]
func (p RetryPolicy) Attempts() int {
	return min(max(p.MaxAttempts, MinAttempts), MaxAttempts)
}

// AttemptFunc performs one full attempt; attempt numbers start at 1
type AttemptFunc func(ctx context.Context, attempt int) error

// Retry runs fn until it succeeds, fails with a non-retryable error, or the
// policy is exhausted. Attempts follow each other immediately without backoff.
// A failed final attempt always yields a *RetryError naming the attempt count;
// a non-retryable failure is returned as is.
func Retry(ctx context.Context, policy RetryPolicy, logger *slog.Logger, fn AttemptFunc) error {
	attempts := policy.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				return err
			}
			return &RetryError{Attempts: attempt - 1, Err: lastErr}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt < attempts {
			LogRetry(logger, attempt, attempts, err)
		}
	}

	LogRequestFailure(logger, lastErr, attempts)
	return &RetryError{Attempts: attempts, Err: lastErr}
}
