package transport

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/membox/logging"
)

// RetryPolicy bounds the retry scheduler. Attempts counts every try
// including the first; Delay is the fixed wait between tries, overridden by
// a server Retry-After hint when the last failure was a rate limit.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy is three total attempts, half a second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond}
}

// scheduleRetry drives fn up to policy.Attempts times. Terminal variants
// (AuthorizationError, RequestError) fail immediately. On exhaustion the last
// observed error is returned unchanged; the scheduler never synthesizes a new
// error type.
func scheduleRetry[T any](ctx context.Context, policy RetryPolicy, logger logging.Logger, fn func() (T, error)) (T, error) {
	var zero T
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !Retryable(err) || attempt == attempts {
			break
		}

		delay := policy.Delay
		var rle *RateLimitError
		if errors.As(err, &rle) && rle.RetryAfterSet {
			delay = rle.RetryAfter
		}
		logger.Debug("membox retry scheduled",
			"attempt", attempt, "max_attempts", attempts, "delay", delay, "error", err.Error())

		if serr := sleep(ctx, delay); serr != nil {
			// Cancelled mid-backoff: the last observed error still describes
			// the failure better than a bare context error.
			break
		}
	}
	return zero, lastErr
}

// sleep waits for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
