package jobs

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds retries of an external call. Delay is the wait before the
// second attempt; each subsequent wait is multiplied by BackoffFactor (a
// factor of 0 or 1 keeps the delay fixed).
type Policy struct {
	MaxAttempts   int
	Delay         time.Duration
	BackoffFactor float64

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// FixedPolicy retries with a constant delay between attempts.
func FixedPolicy(maxAttempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: delay}
}

// BackoffPolicy retries with the delay doubling after every attempt, to
// absorb upstream rate limiting.
func BackoffPolicy(maxAttempts int, initialDelay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: initialDelay, BackoffFactor: 2}
}

// WithSleep returns a copy of the policy using a custom sleep function.
func (p Policy) WithSleep(sleep func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = sleep
	return p
}

// Do runs op until it succeeds, attempts are exhausted, or the context is
// cancelled. Cancellation during a wait is surfaced as the context error, not
// as the last attempt's failure.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := p.Delay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == attempts {
			break
		}
		if delay > 0 {
			if err := p.doSleep(ctx, delay); err != nil {
				return err
			}
		}
		if p.BackoffFactor > 1 {
			delay = time.Duration(float64(delay) * p.BackoffFactor)
		}
	}
	return fmt.Errorf("%d attempts exhausted: %w", attempts, lastErr)
}

func (p Policy) doSleep(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until the context is cancelled, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
