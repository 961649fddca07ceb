package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/transcript-geo/internal/config"
	"github.com/sells-group/transcript-geo/internal/locate"
	"github.com/sells-group/transcript-geo/internal/resilience"
	"github.com/sells-group/transcript-geo/internal/searchcache"
	"github.com/sells-group/transcript-geo/pkg/placesearch"
)

// resolveEnv holds the search stack shared by the resolve and serve
// commands.
type resolveEnv struct {
	Searcher placesearch.Searcher
	Cache    searchcache.Store // may be nil
	Breaker  *resilience.CircuitBreaker
	Pacing   time.Duration
}

// Close releases resources held by the environment.
func (e *resolveEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}

// NewBatch returns a fresh batch orchestrator over the shared searcher.
func (e *resolveEnv) NewBatch() *locate.Batch {
	return locate.NewBatch(locate.NewResolver(e.Searcher), locate.WithPacing(e.Pacing))
}

// initResolveEnv validates cfg for mode and builds the search client, the
// optional circuit breaker and the optional cache. Callers should defer
// env.Close().
func initResolveEnv(ctx context.Context, c *config.Config, mode string) (*resolveEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	env := &resolveEnv{Pacing: c.Batch.Pacing()}
	env.Breaker = newBreaker(c.Search.Circuit)

	var searcher placesearch.Searcher = newSearchClient(c.Search, env.Breaker)

	st, err := searchcache.Open(ctx, c.Cache.Driver, c.Cache.DSN, c.Cache.Table)
	if err != nil {
		return nil, eris.Wrap(err, "open search cache")
	}
	if st != nil {
		env.Cache = st
		searcher = searchcache.New(searcher, st, c.Cache.TTL())
		zap.L().Info("search cache enabled", zap.String("driver", c.Cache.Driver))
	}
	env.Searcher = searcher

	return env, nil
}

// newSearchClient builds the place search client from config.
func newSearchClient(sc config.SearchConfig, breaker *resilience.CircuitBreaker) *placesearch.Client {
	policy := resilience.DefaultRetryPolicy()
	policy.MaxAttempts = sc.MaxAttempts
	if d := sc.InitialBackoff(); d > 0 {
		policy.InitialBackoff = d
	}
	if sc.Multiplier > 0 {
		policy.Multiplier = sc.Multiplier
	}

	opts := []placesearch.Option{
		placesearch.WithBaseURL(sc.BaseURL),
		placesearch.WithUserAgent(sc.UserAgent),
		placesearch.WithRateLimit(sc.RateLimit),
		placesearch.WithLimit(sc.Limit),
		placesearch.WithRetryPolicy(policy),
	}
	if t := sc.Timeout(); t > 0 {
		opts = append(opts, placesearch.WithHTTPClient(&http.Client{Timeout: t}))
	}
	if breaker != nil {
		opts = append(opts, placesearch.WithCircuitBreaker(breaker))
	}
	return placesearch.NewClient(opts...)
}

// newBreaker returns nil when the breaker is disabled. Only transport level
// failures count toward tripping; HTTP error statuses mean the service is
// up.
func newBreaker(cc config.CircuitConfig) *resilience.CircuitBreaker {
	if !cc.Enabled() {
		return nil
	}
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: cc.FailureThreshold,
		ResetTimeout:     time.Duration(cc.ResetTimeoutSecs) * time.Second,
		ShouldTrip:       resilience.IsUnreachable,
		OnStateChange: func(from, to resilience.CircuitState) {
			zap.L().Warn("search circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}
