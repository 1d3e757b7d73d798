// Bounded retry with jittered backoff. Element lookups against a live page
// fail transiently all the time; the loop here is the one place that knows
// how often to try again and how long to look human while doing it.

package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy bounds one retried operation.
type Policy struct {
	// Attempts is the maximum number of tries. Values below 1 mean 1.
	Attempts int

	// MinDelay and MaxDelay bound the jittered sleep between tries. The
	// sleep range is scaled by the attempt number, so later retries back
	// off harder.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Timeout is the per-attempt budget. Zero inherits the caller's
	// context as-is.
	Timeout time.Duration
}

// DefaultPolicy suits read-only lookups: generous attempts, short waits.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		MinDelay: 500 * time.Millisecond,
		MaxDelay: 1500 * time.Millisecond,
		Timeout:  10 * time.Second,
	}
}

// ClickPolicy suits mutating clicks. A click is not idempotent: a retried
// click on a pagination control can advance two pages, so the cap stays at
// 2 and callers verify post-click state before letting the second try run.
func ClickPolicy() Policy {
	return Policy{
		Attempts: 2,
		MinDelay: 500 * time.Millisecond,
		MaxDelay: 1500 * time.Millisecond,
		Timeout:  10 * time.Second,
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns it immediately,
// and errors.Is still sees the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, the policy is exhausted, fn returns a
// Permanent error, or ctx is cancelled. At least one attempt is always
// made. The error from the last attempt is returned, wrapping intact.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		out, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err
		var pe *permanentError
		if errors.As(err, &pe) {
			return zero, pe.err
		}
		if ctx.Err() != nil {
			return zero, lastErr
		}
		if attempt < attempts {
			scale := time.Duration(attempt)
			if err := Sleep(ctx, scale*p.MinDelay, scale*p.MaxDelay); err != nil {
				return zero, lastErr
			}
		}
	}
	return zero, lastErr
}

// Run is Do for actions with no result.
func Run(ctx context.Context, p Policy, fn func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Jitter returns a uniformly sampled duration in [min, max]. A degenerate
// range (min >= max) yields min.
func Jitter(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// Sleep blocks for a jittered duration in [min, max], or until ctx is
// done, whichever comes first. This is the human-like pause used between
// navigations and interactions.
func Sleep(ctx context.Context, min, max time.Duration) error {
	d := Jitter(min, max)
	if d <= 0 {
		return ctx.Err()
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
