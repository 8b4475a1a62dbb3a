// Package retry provides a bounded retry policy with exponential backoff and
// jitter. The policy is a plain value so callers (resolution recovery,
// narration synthesis, media downloads) share one tested implementation
// instead of hand-rolled loops.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// ErrRateLimited marks an explicit throttling signal from a backend.
// Wrap it with %w so RateLimitedOnly can classify the failure.
var ErrRateLimited = errors.New("rate limited")

// ErrTransient marks a failure the caller has already judged temporary,
// such as a 503 from a media host. TransientNetwork retries it.
var ErrTransient = errors.New("transient failure")

// Policy is a bounded retry policy: at most MaxAttempts calls, exponential
// delay between them, and a predicate deciding which errors are worth
// retrying. The zero value retries nothing.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. It returns
// nil on the first success, the last error once attempts are exhausted or the
// error is not retryable, and the context error if cancelled mid-wait.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(p.Delay(attempt - 1)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}

// Delay returns the backoff before the given retry (1-based), capped at
// MaxDelay, with 0-25% jitter so concurrent retries don't stampede.
func (p Policy) Delay(retry int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(retry-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

// RateLimitedOnly retries only explicit throttling signals; every other
// failure is terminal.
func RateLimitedOnly(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// TransientNetwork reports whether a network-level error is worth retrying.
func TransientNetwork(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "broken pipe")
}
