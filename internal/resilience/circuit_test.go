package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func failing(_ context.Context) (int, error) { return 0, errors.New("fail") }

func TestCircuitBreaker_ClosedPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	got, err := Guard(context.Background(), cb, func(_ context.Context) (int, error) { return 7, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, _ = Guard(context.Background(), cb, failing)
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	_, err := Guard(context.Background(), cb, func(_ context.Context) (int, error) {
		t.Error("should not be called while open")
		return 0, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	ctx := context.Background()

	_, _ = Guard(ctx, cb, failing)
	_, _ = Guard(ctx, cb, failing)
	_, _ = Guard(ctx, cb, func(_ context.Context) (int, error) { return 1, nil })
	_, _ = Guard(ctx, cb, failing)
	_, _ = Guard(ctx, cb, failing)

	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after interleaved success, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	now := time.Now()
	cb.now = func() time.Time { return now }

	_, _ = Guard(context.Background(), cb, failing)
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	now = now.Add(2 * time.Minute)
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", cb.State())
	}

	_, err := Guard(context.Background(), cb, func(_ context.Context) (int, error) { return 1, nil })
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successful probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	now := time.Now()
	cb.now = func() time.Time { return now }

	_, _ = Guard(context.Background(), cb, failing)
	_, _ = Guard(context.Background(), cb, failing)
	now = now.Add(2 * time.Minute)

	_, _ = Guard(context.Background(), cb, failing)
	if cb.State() != CircuitOpen {
		t.Errorf("expected reopened circuit, got %s", cb.State())
	}
}

func TestCircuitBreaker_ShouldTripFilters(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       IsUnreachable,
	})

	_, _ = Guard(context.Background(), cb, func(_ context.Context) (int, error) {
		return 0, NewTransientError(errors.New("status 503"), 503)
	})
	if cb.State() != CircuitClosed {
		t.Errorf("HTTP status errors should not trip, got %s", cb.State())
	}
}

func TestCircuitBreaker_OnStateChangeAndReset(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_, _ = Guard(context.Background(), cb, failing)
	cb.Reset()

	want := []string{"closed->open", "open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestGuard_NilBreaker(t *testing.T) {
	got, err := Guard(context.Background(), nil, func(_ context.Context) (string, error) { return "x", nil })
	if err != nil || got != "x" {
		t.Errorf("expected passthrough, got %q, %v", got, err)
	}
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = Guard(context.Background(), cb, func(_ context.Context) (int, error) {
				if i%2 == 0 {
					return 0, errors.New("fail")
				}
				return i, nil
			})
			_ = cb.State()
		}(i)
	}
	wg.Wait()
}

func TestCircuitState_String(t *testing.T) {
	cases := map[CircuitState]string{
		CircuitClosed:    "closed",
		CircuitOpen:      "open",
		CircuitHalfOpen:  "half-open",
		CircuitState(42): "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("expected %s, got %s", want, s.String())
		}
	}
}
