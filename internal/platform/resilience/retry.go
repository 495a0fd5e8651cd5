package resilience

import (
	"context"
	"math/rand"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrTransient marks failures that are worth retrying. Adapters wrap
// transport-level errors with it so the policy can tell transient from
// permanent without inspecting message text.
var ErrTransient = crerr.New("transient failure")

// Transient wraps err so RetryPolicy treats it as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrTransient)
}

func IsTransient(err error) bool {
	return crerr.Is(err, ErrTransient)
}

// RetryPolicy is a bounded exponential-backoff retry loop with jitter.
// Permanent errors (anything not marked transient by Retryable) fail fast.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether err is worth another attempt.
	// Defaults to IsTransient.
	Retryable func(error) bool
	// Sleep is replaceable in tests. Defaults to a ctx-aware timer sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	jitter func(time.Duration) time.Duration
}

func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 60 * time.Second
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}
}

// Do runs fn until it succeeds, returns a permanent error, or the attempt
// budget is spent. The last error is returned as-is so callers keep its kind.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	jitter := p.jitter
	if jitter == nil {
		jitter = defaultJitter
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, jitter(p.backoff(attempt))); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// backoff returns base * 2^(attempt-1) capped at MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// defaultJitter spreads the delay over [d/2, d).
func defaultJitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
