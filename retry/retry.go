// Package retry provides a resilient-call executor with exponential backoff,
// jitter, and rate-limit-aware waiting.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Policy configures one resilient call. It is configuration, not mutable
// state; the same Policy value can be shared between calls.
type Policy struct {
	// MaxAttempts is the total number of invocations before giving up.
	MaxAttempts int
	// BaseDelay is the first backoff delay; it doubles after every
	// transient failure.
	BaseDelay time.Duration
}

// DefaultPolicy returns the policy used when a zero Policy is supplied.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   1 * time.Second,
	}
}

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// RateLimitError signals that the remote party dictated a wait before the
// next attempt. The executor sleeps RetryAfter plus a small jitter and does
// not grow the exponential backoff for it.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %v", e.RetryAfter)
}

// Call executes op up to p.MaxAttempts times and returns its first success.
//
// Failures are not classified beyond the rate-limit case: the caller is
// expected to only hand Call operations whose failure modes are worth
// retrying. This is an explicit policy, chosen over fine-grained error
// classification.
func Call[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy().BaseDelay
	}

	var lastErr error
	backoff := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		var rl *RateLimitError
		if errors.As(err, &rl) {
			// Wait duration is dictated by the remote party; it does
			// not count against exponential backoff growth.
			if err := sleep(ctx, rl.RetryAfter+jitter(100*time.Millisecond, 500*time.Millisecond)); err != nil {
				return zero, err
			}
			continue
		}

		if attempt == p.MaxAttempts {
			break
		}
		if err := sleep(ctx, backoff+jitter(50*time.Millisecond, 250*time.Millisecond)); err != nil {
			return zero, err
		}
		backoff *= 2
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.MaxAttempts, lastErr)
}

// Do is Call for operations with no return value.
func Do(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Call(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// sleep waits for d or until the context is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jitter returns a random duration in [lo, hi).
func jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}
