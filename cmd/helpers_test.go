package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sells-group/transcript-geo/internal/config"
	"github.com/sells-group/transcript-geo/internal/locate"
	"github.com/sells-group/transcript-geo/internal/model"
)

// fakeRunner resolves every location to a fixed point except names listed
// in skip, and returns err after processing when set.
type fakeRunner struct {
	skip map[string]bool
	err  error
}

func (f *fakeRunner) Run(_ context.Context, locs []model.ExtractedLocation) (*locate.BatchResult, error) {
	res := &locate.BatchResult{RunID: "run-1", Locations: []model.GeocodedLocation{}}
	for _, l := range locs {
		if f.skip[l.Name] {
			res.Failed++
			res.Unresolved = append(res.Unresolved, l.Name)
			continue
		}
		res.Locations = append(res.Locations, model.GeocodedLocation{
			Name: l.Name, Lat: 1.5, Lon: 2.5, DisplayName: l.Name + ", Somewhere",
		}.WithSource(l))
		res.Resolved++
		if f.err != nil {
			return res, f.err
		}
	}
	return res, nil
}

// testConfig returns a config that passes Validate for every mode except
// "cache".
func testConfig(baseURL string) *config.Config {
	c := &config.Config{}
	c.Search.BaseURL = baseURL
	c.Search.UserAgent = "transcript-geo-test/1.0"
	c.Search.TimeoutSecs = 5
	c.Search.Limit = 10
	c.Search.RateLimit = 0
	c.Search.MaxAttempts = 1
	c.Search.InitialBackoffMs = 1
	c.Search.Multiplier = 2
	c.Batch.PacingMs = 0
	c.Batch.MaxConcurrentFiles = 2
	c.Cache.TTLHours = 1
	c.Server.Port = 8080
	return c
}

// fakeNominatim serves canned /search responses keyed by the q parameter
// and counts requests.
func fakeNominatim(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "Samarkand, Uzbekistan":
			_, _ = io.WriteString(w, `[{"lat":"39.627","lon":"66.975","display_name":"Samarkand, Uzbekistan","class":"place","type":"city","importance":0.75,"place_rank":16}]`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}
