package resilience

import (
	"context"
	"time"
)

// Sleeper blocks for a duration or until the context is done. Retry backoff
// and batch pacing both wait through a Sleeper so tests can substitute a
// fake clock.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a plain function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep implements Sleeper.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// WallClock sleeps on real time.
var WallClock Sleeper = SleeperFunc(sleepContext)

func sleepContext(ctx context.Context, d time.Duration) error {
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
