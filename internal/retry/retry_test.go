package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testPolicy(maxAttempts int, retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retryable:   retryable,
	}
}

func TestDoFirstTrySuccess(t *testing.T) {
	calls := 0
	err := testPolicy(3, TransientNetwork).Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := testPolicy(3, TransientNetwork).Do(context.Background(), func() error {
		calls++
		return errors.New("connection reset by peer")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	terminal := errors.New("invalid voice id")
	err := testPolicy(5, RateLimitedOnly).Do(context.Background(), func() error {
		calls++
		return terminal
	})
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-retryable error should not be retried, got %d calls", calls)
	}
}

func TestDoRetriesRateLimited(t *testing.T) {
	calls := 0
	err := testPolicy(4, RateLimitedOnly).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("tts returned 429: %w", ErrRateLimited)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoCancelledWhileWaiting(t *testing.T) {
	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Hour, // never actually waited out
		Retryable:   func(error) bool { return true },
	}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func() error {
			calls++
			return errors.New("transient")
		})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDelayGrowsAndCaps(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond}

	for retry := 1; retry <= 6; retry++ {
		d := p.Delay(retry)
		base := float64(10*time.Millisecond) * float64(int(1)<<(retry-1))
		if base > float64(40*time.Millisecond) {
			base = float64(40 * time.Millisecond)
		}
		// jitter adds at most 25%
		if float64(d) < base || float64(d) > base*1.25 {
			t.Errorf("retry %d: delay %v outside [%v, %v]", retry, d, time.Duration(base), time.Duration(base*1.25))
		}
	}
}

func TestTransientNetworkPredicate(t *testing.T) {
	if TransientNetwork(nil) {
		t.Error("nil should not be transient")
	}
	if !TransientNetwork(errors.New("dial tcp: i/o timeout")) {
		t.Error("timeout should be transient")
	}
	if TransientNetwork(errors.New("404 not found")) {
		t.Error("HTTP 404 should not be transient")
	}
	if !TransientNetwork(fmt.Errorf("status 503: %w", ErrTransient)) {
		t.Error("wrapped ErrTransient should be transient")
	}
}
