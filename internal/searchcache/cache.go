// Package searchcache memoizes place search responses in a persistent
// store so repeated batches do not re-query the search service.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/transcript-geo/pkg/placesearch"
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// Store persists search responses by key.
type Store interface {
	// Get returns the cached results for key. found is false on a miss or
	// when the entry has expired.
	Get(ctx context.Context, key string) (results []placesearch.Result, found bool, err error)
	Set(ctx context.Context, key string, results []placesearch.Result, ttl time.Duration) error
	// Prune deletes expired entries and returns how many were removed.
	Prune(ctx context.Context) (int64, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Key derives the cache key for q. Queries that differ only in case or
// surrounding whitespace share a key.
func Key(q placesearch.Query) string {
	norm := func(s string) string { return cases.Fold().String(strings.TrimSpace(s)) }
	h := sha256.New()
	for _, part := range []string{q.Mode(), norm(q.Text), norm(q.City), norm(q.Country)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cached is a placesearch.Searcher that consults a Store before
// delegating. Only successful responses are stored.
type Cached struct {
	next  placesearch.Searcher
	store Store
	ttl   time.Duration
}

// New wraps next with store. A non-positive ttl uses DefaultTTL.
func New(next placesearch.Searcher, store Store, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{next: next, store: store, ttl: ttl}
}

// Search implements placesearch.Searcher.
func (c *Cached) Search(ctx context.Context, q placesearch.Query) ([]placesearch.Result, error) {
	key := Key(q)

	results, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		zap.L().Warn("searchcache: read failed, treating as miss",
			zap.String("query", q.String()),
			zap.Error(err),
		)
	case found:
		zap.L().Debug("searchcache: hit", zap.String("query", q.String()))
		return results, nil
	}

	results, err = c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, results, c.ttl); err != nil {
		zap.L().Warn("searchcache: write failed",
			zap.String("query", q.String()),
			zap.Error(err),
		)
	}
	return results, nil
}
