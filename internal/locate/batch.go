package locate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/transcript-geo/internal/model"
	"github.com/sells-group/transcript-geo/internal/resilience"
)

// DefaultPacing is the pause between consecutive resolutions in a batch.
const DefaultPacing = 600 * time.Millisecond

// NameResolver resolves one raw name. *Resolver implements it.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (model.GeocodedLocation, bool, error)
}

// BatchResult is the outcome of one batch. Counts are informational.
type BatchResult struct {
	RunID      string                   `json:"run_id"`
	Locations  []model.GeocodedLocation `json:"locations"`
	Resolved   int                      `json:"resolved"`
	Failed     int                      `json:"failed"`
	Unresolved []string                 `json:"unresolved,omitempty"`
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithPacing sets the pause between resolutions.
func WithPacing(d time.Duration) BatchOption {
	return func(b *Batch) {
		if d >= 0 {
			b.pacing = d
		}
	}
}

// WithBatchSleeper sets the sleeper used for pacing.
func WithBatchSleeper(s resilience.Sleeper) BatchOption {
	return func(b *Batch) {
		if s != nil {
			b.sleeper = s
		}
	}
}

// Batch resolves extracted locations one at a time, pausing between each
// to respect the search API's single-client rate limit.
type Batch struct {
	resolver NameResolver
	pacing   time.Duration
	sleeper  resilience.Sleeper
}

// NewBatch creates a Batch.
func NewBatch(r NameResolver, opts ...BatchOption) *Batch {
	b := &Batch{
		resolver: r,
		pacing:   DefaultPacing,
		sleeper:  resilience.WallClock,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run resolves locs in order. Unresolved items are dropped from Locations
// and counted. An error is returned only when ctx ends or the search backend
// is unreachable; the result then holds everything resolved so far.
func (b *Batch) Run(ctx context.Context, locs []model.ExtractedLocation) (*BatchResult, error) {
	res := &BatchResult{
		RunID:     uuid.New().String(),
		Locations: make([]model.GeocodedLocation, 0, len(locs)),
	}
	log := zap.L().With(zap.String("run_id", res.RunID))
	log.Info("batch started", zap.Int("total", len(locs)))

	for i, src := range locs {
		if i > 0 {
			if err := b.sleeper.Sleep(ctx, b.pacing); err != nil {
				return res, err
			}
		}

		loc, found, err := b.resolver.Resolve(ctx, src.Name)
		if err != nil {
			log.Error("batch aborted",
				zap.Int("processed", i),
				zap.Int("resolved", res.Resolved),
				zap.Error(err),
			)
			return res, err
		}
		if !found {
			res.Failed++
			res.Unresolved = append(res.Unresolved, src.Name)
			log.Info("location not resolved", zap.String("location", src.Name))
			continue
		}

		res.Locations = append(res.Locations, loc.WithSource(src))
		res.Resolved++
	}

	log.Info("batch complete",
		zap.Int("total", len(locs)),
		zap.Int("resolved", res.Resolved),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
