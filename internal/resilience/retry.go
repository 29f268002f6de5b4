package resilience

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to attempts times, waiting backoff*(i+1) between tries.
// It stops early when ctx is done.
func Retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
