package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/craftline/pricedeskgo/internal/store"
)

// Retry policy defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1000 * time.Millisecond
	DefaultMaxDelay    = 5000 * time.Millisecond
)

// Executor wraps remote operations with bounded retries and exponential
// backoff. Retryable failures (network, 5xx, unavailable) are retried up to
// MaxAttempts; permission and validation failures short-circuit immediately.
type Executor struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewExecutor creates an executor with the default policy.
func NewExecutor() *Executor {
	return &Executor{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Do runs op until it succeeds, exhausts the attempt budget, or fails
// terminally. The delay before attempt k (k >= 2) is BaseDelay * 2^(k-2),
// capped at MaxDelay. Waiting suspends on the context instead of blocking,
// so concurrent operations keep making progress and cancellation is honored
// mid-backoff.
func (e *Executor) Do(ctx context.Context, name string, op func(context.Context) error) error {
	maxAttempts := e.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := e.delayFor(attempt)
			log.Printf("⏳ %s: attempt %d/%d in %v (last error: %v)", name, attempt, maxAttempts, delay, lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", name, ctx.Err())
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !store.IsRetryable(lastErr) {
			// Terminal: retrying cannot help, hand back to the caller's
			// fallback logic right away
			return fmt.Errorf("%s: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: retries exhausted after %d attempts: %w", name, maxAttempts, lastErr)
}

// delayFor computes the capped exponential backoff before attempt k.
func (e *Executor) delayFor(attempt int) time.Duration {
	delay := e.BaseDelay
	for i := 2; i < attempt; i++ {
		delay *= 2
		if delay >= e.MaxDelay {
			return e.MaxDelay
		}
	}
	if delay > e.MaxDelay {
		return e.MaxDelay
	}
	return delay
}
