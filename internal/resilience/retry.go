// Package resilience wraps provider calls with retries, circuit breaking, and
// a dead letter queue for batch contacts that exhaust both.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig paces repeated attempts at a failing provider call.
type RetryConfig struct {
	// MaxAttempts counts the first try. 1 disables retries.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt; each further
	// attempt multiplies it by Multiplier, capped at MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	// JitterFraction randomizes each delay by up to +/- this fraction so
	// parallel batch workers do not hammer a recovering provider in lockstep.
	JitterFraction float64

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means IsTransient.
	ShouldRetry func(err error) bool
}

// FromRetryConfig builds a RetryConfig from raw config values, substituting
// defaults for zero or negative inputs.
func FromRetryConfig(maxAttempts, initialBackoffMs, maxBackoffMs int, multiplier, jitterFraction float64) RetryConfig {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	if multiplier > 0 {
		cfg.Multiplier = multiplier
	}
	if jitterFraction >= 0 {
		cfg.JitterFraction = jitterFraction
	}
	return cfg
}

// DoVal runs fn until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts, or the context is done. The last error is returned as-is so
// callers can still classify it.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !shouldRetry(err) || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, lastErr
		case <-time.After(cfg.delay(attempt)):
		}
	}
	return zero, lastErr
}

// Do is DoVal for operations without a result.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// delay computes the sleep before attempt+1. attempt is 1-based.
func (cfg RetryConfig) delay(attempt int) time.Duration {
	base := cfg.InitialBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	mult := cfg.Multiplier
	if mult <= 0 {
		mult = 2.0
	}
	ceil := cfg.MaxBackoff
	if ceil <= 0 {
		ceil = 30 * time.Second
	}

	d := float64(base)
	for i := 1; i < attempt; i++ {
		d *= mult
		if d >= float64(ceil) {
			d = float64(ceil)
			break
		}
	}

	if cfg.JitterFraction > 0 {
		spread := d * cfg.JitterFraction
		d += (rand.Float64()*2 - 1) * spread
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
