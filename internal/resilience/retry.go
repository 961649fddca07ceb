// Package resilience provides retry and circuit breaker helpers for calls to
// the external place-search backend.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls retry behavior with exponential backoff.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first one.
	// A value of 1 disables retries. Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps any single delay. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier scales the delay after each retry. Default: 2.0.
	Multiplier float64

	// JitterFraction randomizes each delay by ±fraction. Zero keeps delays
	// deterministic, which is what the search client uses.
	JitterFraction float64

	// Retryable overrides the transient-error check. If nil, IsTransient is used.
	Retryable func(err error) bool

	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Sleeper performs the backoff wait. If nil, WallClock is used.
	Sleeper Sleeper
}

// DefaultRetryPolicy returns the policy used for place-search calls: two
// retries after the first attempt, waiting 1s then 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = time.Second
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.JitterFraction < 0 {
		p.JitterFraction = 0
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	if p.Sleeper == nil {
		p.Sleeper = WallClock
	}
	return p
}

// Backoff returns the delay to wait after the given zero-based retry index.
func (p RetryPolicy) Backoff(retry int) time.Duration {
	p = p.withDefaults()

	delay := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(retry))
	if delay > float64(p.MaxBackoff) {
		delay = float64(p.MaxBackoff)
	}
	if p.JitterFraction > 0 {
		spread := delay * p.JitterFraction
		delay += (rand.Float64()*2 - 1) * spread
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Retry calls fn until it succeeds, returns a non-retryable error, the
// attempts run out, or ctx is cancelled. The last error is returned on failure.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !p.Retryable(err) {
			return zero, lastErr
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if sleepErr := p.Sleeper.Sleep(ctx, delay); sleepErr != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

// RetryLogger returns an OnRetry callback that logs each retry at warn level.
func RetryLogger(service, operation string) func(int, time.Duration, error) {
	return func(attempt int, delay time.Duration, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
	}
}
