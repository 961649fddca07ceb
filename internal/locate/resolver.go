// Package locate resolves free-text place names extracted from transcripts
// to a single geographic point.
package locate

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/transcript-geo/internal/model"
	"github.com/sells-group/transcript-geo/internal/resilience"
	"github.com/sells-group/transcript-geo/pkg/placesearch"
)

// Resolver turns one raw location name into the best matching point.
type Resolver struct {
	searcher placesearch.Searcher
}

// NewResolver creates a Resolver backed by s.
func NewResolver(s placesearch.Searcher) *Resolver {
	return &Resolver{searcher: s}
}

// Resolve tries each candidate for name in order and returns the winner of
// the first candidate with an accepted result. The bool is false when every
// candidate is exhausted. An error is returned only when ctx is done or the
// search backend is unreachable; per-candidate search failures are skipped.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.GeocodedLocation, bool, error) {
	exp := Expect(name)
	log := zap.L().With(zap.String("location", name))

	for _, cand := range Candidates(name) {
		if strings.TrimSpace(cand) == "" {
			continue
		}

		results, err := r.lookup(ctx, cand, exp)
		if err != nil {
			return model.GeocodedLocation{}, false, err
		}

		best, ok := Best(results, cand, exp)
		if !ok {
			log.Debug("locate: no acceptable result for candidate",
				zap.String("candidate", cand),
				zap.Int("results", len(results)),
			)
			continue
		}

		log.Debug("locate: resolved",
			zap.String("candidate", cand),
			zap.String("display_name", best.Result.DisplayName),
			zap.Float64("score", best.Score),
		)
		return model.GeocodedLocation{
			Name:        name,
			Lat:         best.Result.Lat,
			Lon:         best.Result.Lon,
			DisplayName: best.Result.DisplayName,
		}, true, nil
	}
	return model.GeocodedLocation{}, false, nil
}

// lookup issues a structured city+country search when the candidate has
// that shape and a region is expected, falling back to free text when the
// structured search is skipped or comes back empty.
func (r *Resolver) lookup(ctx context.Context, cand string, exp Expectation) ([]placesearch.Result, error) {
	if exp.HasRegion() {
		if city, country, ok := splitCityCountry(cand); ok {
			results, err := r.search(ctx, placesearch.Structured(city, country))
			if err != nil {
				return nil, err
			}
			if len(results) > 0 {
				return results, nil
			}
		}
	}
	return r.search(ctx, placesearch.FreeText(cand))
}

// search swallows ordinary search failures so the caller moves on to the
// next candidate.
func (r *Resolver) search(ctx context.Context, q placesearch.Query) ([]placesearch.Result, error) {
	results, err := r.searcher.Search(ctx, q)
	if err == nil {
		return results, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, err
	}
	zap.L().Debug("locate: search failed, skipping query",
		zap.String("mode", q.Mode()),
		zap.String("query", q.String()),
		zap.Error(err),
	)
	return nil, nil
}

// splitCityCountry splits "city, country" when there is exactly one comma
// and both sides have at least two characters.
func splitCityCountry(s string) (city, country string, ok bool) {
	parts := splitTrim(s, ",")
	if len(parts) != 2 || runeLen(parts[0]) < 2 || runeLen(parts[1]) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
