package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingSleeper captures requested delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	sleeper := &recordingSleeper{}
	p := DefaultRetryPolicy()
	p.Sleeper = sleeper

	var calls int
	got, err := Retry(context.Background(), p, func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("expected no sleeps, got %v", sleeper.delays)
	}
}

func TestRetry_BacksOffOneThenTwoSeconds(t *testing.T) {
	sleeper := &recordingSleeper{}
	p := DefaultRetryPolicy()
	p.Sleeper = sleeper

	var calls int
	got, err := Retry(context.Background(), p, func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, NewTransientError(errors.New("rate limited"), 429)
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Errorf("delay %d: expected %s, got %s", i, want[i], sleeper.delays[i])
		}
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	p := DefaultRetryPolicy()
	p.Sleeper = sleeper

	var calls int
	_, err := Retry(context.Background(), p, func(_ context.Context) (struct{}, error) {
		calls++
		return struct{}{}, NewTransientError(errors.New("always throttled"), 429)
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(sleeper.delays) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(sleeper.delays))
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	sleeper := &recordingSleeper{}
	p := DefaultRetryPolicy()
	p.Sleeper = sleeper

	var calls int
	_, err := Retry(context.Background(), p, func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("decode response: unexpected token")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_CustomRetryable(t *testing.T) {
	p := DefaultRetryPolicy()
	p.Sleeper = &recordingSleeper{}
	p.Retryable = func(error) bool { return true }

	var calls int
	_, _ = Retry(context.Background(), p, func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("anything")
	})
	if calls != 3 {
		t.Errorf("expected 3 calls with custom Retryable, got %d", calls)
	}
}

func TestRetry_ContextCancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultRetryPolicy()
	p.MaxAttempts = 5
	p.Sleeper = &recordingSleeper{}

	var calls int
	_, err := Retry(ctx, p, func(_ context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("fail"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call after cancel, got %d", calls)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	p := DefaultRetryPolicy()
	p.Sleeper = &recordingSleeper{}

	var attempts []int
	var delays []time.Duration
	p.OnRetry = func(attempt int, delay time.Duration, _ error) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	}

	_, _ = Retry(context.Background(), p, func(_ context.Context) (int, error) {
		return 0, NewTransientError(errors.New("fail"), 500)
	})
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("expected attempts [1 2], got %v", attempts)
	}
	if len(delays) != 2 || delays[1] != 2*time.Second {
		t.Errorf("unexpected delays %v", delays)
	}
}

func TestBackoff_ExponentialGrowthAndCap(t *testing.T) {
	p := RetryPolicy{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		Multiplier:     2.0,
	}
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
	}
	for i, w := range want {
		if got := p.Backoff(i); got != w {
			t.Errorf("retry %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestBackoff_JitterStaysInRange(t *testing.T) {
	p := RetryPolicy{
		InitialBackoff: time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.5,
	}
	for i := 0; i < 100; i++ {
		got := p.Backoff(0)
		if got < 500*time.Millisecond || got > 1500*time.Millisecond {
			t.Fatalf("jittered delay %s out of range", got)
		}
	}
}

func TestWallClock_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := WallClock.Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep did not return promptly on cancel")
	}
}

func TestRetryLogger(t *testing.T) {
	fn := RetryLogger("placesearch", "search")
	fn(1, time.Second, errors.New("boom"))
}
