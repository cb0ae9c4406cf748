// Package resilience applies a uniform timeout and bounded-retry policy to
// outbound calls.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds one logical call: each attempt gets Timeout, and up to
// MaxRetries further attempts follow a failure, waiting Backoff(attempt)
// before attempt+1. Attempts are numbered from 1.
type Policy struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    func(attempt int) time.Duration
}

// LinearBackoff waits base, 2*base, 3*base...
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn under the policy and returns the last error. A Permanent error
// stops immediately and is returned unwrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	var backoff retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		if p.Backoff == nil {
			return 0, false
		}
		return p.Backoff(attempt), false
	})
	backoff = retry.WithMaxRetries(uint64(max(p.MaxRetries, 0)), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		return retry.RetryableError(err)
	})
}
