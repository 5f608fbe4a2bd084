package posting

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times, retrying only transient storage
// failures with a linearly growing delay. Non-retriable error kinds surface
// immediately; the all-or-nothing transaction guarantees a failed attempt
// left no partial state behind.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * delay):
			}
		}
		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}
