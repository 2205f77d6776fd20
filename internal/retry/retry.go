package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendBot/internal/model"
)

// Policy configures Do.
type Policy struct {
	Retries  int           // extra attempts after the first
	BaseWait time.Duration // doubled after every failed attempt
	MaxWait  time.Duration
}

// DefaultPolicy retries once after one second.
func DefaultPolicy() Policy {
	return Policy{Retries: 1, BaseWait: time.Second, MaxWait: 10 * time.Second}
}

// Retryable reports whether err is a transient upstream failure.
func Retryable(err error) bool {
	return errors.Is(err, model.ErrUpstream)
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy is exhausted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var lastErr error
	wait := p.BaseWait
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(wait):
			}
			wait *= 2
			if p.MaxWait > 0 && wait > p.MaxWait {
				wait = p.MaxWait
			}
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("all %d attempts failed: %w", p.Retries+1, lastErr)
}
