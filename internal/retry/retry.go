package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Exponential bool
}

// BackoffDelay returns the wait before retrying after the given attempt
// (1-based). Exponential doubles per attempt: 1s, 2s, 4s for Delay=1s.
func BackoffDelay(cfg Config, attempt int) time.Duration {
	if !cfg.Exponential {
		return cfg.Delay
	}
	return cfg.Delay << (attempt - 1)
}

// WithRetry runs fn up to MaxAttempts times, sleeping BackoffDelay between
// attempts. Context cancellation interrupts the wait.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == cfg.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(BackoffDelay(cfg, attempt)):
				continue
			}
		}
		return nil
	}

	return lastErr
}
