package placesearch

import (
	"context"
	"sync"
	"time"
)

// fakeSleeper records backoff delays without waiting.
type fakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *fakeSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// newTestClient builds a client pointed at baseURL with no rate limit and a
// fake sleeper.
func newTestClient(baseURL string, opts ...Option) (*Client, *fakeSleeper) {
	sleeper := &fakeSleeper{}
	base := []Option{
		WithBaseURL(baseURL),
		WithRateLimit(0),
		WithSleeper(sleeper),
	}
	return NewClient(append(base, opts...)...), sleeper
}
