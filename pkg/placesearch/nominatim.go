package placesearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/transcript-geo/internal/resilience"
)

const maxResponseBytes = 4 << 20

// nominatimPlace is one element of the /search JSON array. Coordinates come
// back as strings. jsonv2 responses use "category" in place of "class".
type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Class       string  `json:"class"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	PlaceRank   int     `json:"place_rank"`
}

func (c *Client) searchURL(q Query) string {
	params := url.Values{
		"format": {"json"},
		"limit":  {strconv.Itoa(c.limit)},
	}
	if q.IsStructured() {
		params.Set("city", q.City)
		params.Set("country", q.Country)
	} else {
		params.Set("q", q.Text)
	}
	return c.baseURL + "/search?" + params.Encode()
}

// do performs a single request attempt.
func (c *Client) do(ctx context.Context, q Query) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "placesearch: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(q), nil)
	if err != nil {
		return nil, eris.Wrap(err, "placesearch: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "placesearch: request")
		}
		return nil, resilience.NewTransientError(eris.Wrap(err, "placesearch: request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, resilience.NewTransientError(
			eris.Errorf("placesearch: %s returned status %d", q.Mode(), resp.StatusCode),
			resp.StatusCode,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "placesearch: read body"), 0)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "placesearch: parse response")
	}

	results := make([]Result, 0, len(places))
	for _, p := range places {
		r, ok := p.toResult()
		if !ok {
			zap.L().Debug("placesearch: skipping record with bad coordinates",
				zap.String("display_name", p.DisplayName),
				zap.String("lat", p.Lat),
				zap.String("lon", p.Lon),
			)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (p nominatimPlace) toResult() (Result, bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Result{}, false
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Result{}, false
	}
	class := p.Class
	if class == "" {
		class = p.Category
	}
	return Result{
		Lat:         lat,
		Lon:         lon,
		DisplayName: p.DisplayName,
		Class:       class,
		Type:        p.Type,
		Importance:  p.Importance,
		PlaceRank:   p.PlaceRank,
	}, true
}
