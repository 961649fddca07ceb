package locate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/transcript-geo/internal/model"
	"github.com/sells-group/transcript-geo/internal/resilience"
	"github.com/sells-group/transcript-geo/pkg/placesearch"
	"github.com/sells-group/transcript-geo/pkg/placesearch/mocks"
)

// stubSearcher answers from a fixed table keyed by query and records calls.
type stubSearcher struct {
	results map[placesearch.Query][]placesearch.Result
	errs    map[placesearch.Query]error
	calls   []placesearch.Query
}

func (s *stubSearcher) Search(_ context.Context, q placesearch.Query) ([]placesearch.Result, error) {
	s.calls = append(s.calls, q)
	if err, ok := s.errs[q]; ok {
		return nil, err
	}
	return s.results[q], nil
}

func TestResolve_Samarkand(t *testing.T) {
	m := mocks.NewMockSearcher(t)
	m.On("Search", mock.Anything, placesearch.FreeText("Samarkand, Uzbekistan")).
		Return([]placesearch.Result{samarkand}, nil).Once()

	loc, found, err := NewResolver(m).Resolve(context.Background(), "Samarkand, Uzbekistan")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.GeocodedLocation{
		Name:        "Samarkand, Uzbekistan",
		Lat:         39.627,
		Lon:         66.975,
		DisplayName: "Samarkand, Uzbekistan",
	}, loc)
}

func TestResolve_StructuredSearchWhenRegionExpected(t *testing.T) {
	kashgar := placesearch.Result{
		Lat: 39.47, Lon: 75.99, DisplayName: "Kashgar, Xinjiang, China",
		Class: "place", Type: "city", Importance: 0.6, PlaceRank: 16,
	}
	m := mocks.NewMockSearcher(t)
	m.On("Search", mock.Anything, placesearch.Structured("Kashgar", "China")).
		Return([]placesearch.Result{kashgar}, nil).Once()

	loc, found, err := NewResolver(m).Resolve(context.Background(), "Kashgar, China")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Kashgar, China", loc.Name)
	assert.InDelta(t, 39.47, loc.Lat, 1e-9)
	m.AssertNotCalled(t, "Search", mock.Anything, placesearch.FreeText("Kashgar, China"))
}

func TestResolve_StructuredEmptyFallsBackToFreeText(t *testing.T) {
	kashgar := placesearch.Result{
		Lat: 39.47, Lon: 75.99, DisplayName: "Kashgar, Xinjiang, China",
		Class: "place", Type: "city", Importance: 0.6, PlaceRank: 16,
	}
	s := &stubSearcher{results: map[placesearch.Query][]placesearch.Result{
		placesearch.FreeText("Kashgar, China"): {kashgar},
	}}

	_, found, err := NewResolver(s).Resolve(context.Background(), "Kashgar, China")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []placesearch.Query{
		placesearch.Structured("Kashgar", "China"),
		placesearch.FreeText("Kashgar, China"),
	}, s.calls)
}

func TestResolve_NoStructuredWithoutRegion(t *testing.T) {
	s := &stubSearcher{}
	_, found, err := NewResolver(s).Resolve(context.Background(), "Springfield, IL")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []placesearch.Query{placesearch.FreeText("Springfield, IL")}, s.calls)
}

func TestResolve_AdvancesPastRejectedCandidate(t *testing.T) {
	s := &stubSearcher{results: map[placesearch.Query][]placesearch.Result{
		placesearch.FreeText("Gaza"):      {telAviv},
		placesearch.FreeText("Gaza City"): {gazaCity},
	}}

	loc, found, err := NewResolver(s).Resolve(context.Background(), "Gaza City")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Gaza City", loc.Name, "output keeps the raw name")
	assert.Equal(t, gazaCity.DisplayName, loc.DisplayName)
	assert.Len(t, s.calls, 2)
}

func TestResolve_SearchFailureSkipsCandidate(t *testing.T) {
	m := mocks.NewMockSearcher(t)
	m.On("Search", mock.Anything, placesearch.FreeText("Aleppo")).
		Return(nil, resilience.NewTransientError(errors.New("status 429"), 429)).Once()
	aleppo := placesearch.Result{
		Lat: 36.2, Lon: 37.16, DisplayName: "Aleppo, Syria",
		Class: "place", Type: "city", Importance: 0.7, PlaceRank: 16,
	}
	m.On("Search", mock.Anything, placesearch.FreeText("Aleppo (northern Syria)")).
		Return([]placesearch.Result{aleppo}, nil).Once()

	loc, found, err := NewResolver(m).Resolve(context.Background(), "Aleppo (northern Syria)")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Aleppo (northern Syria)", loc.Name)
}

func TestResolve_CircuitOpenIsReturned(t *testing.T) {
	m := mocks.NewMockSearcher(t)
	m.On("Search", mock.Anything, mock.Anything).Return(nil, resilience.ErrCircuitOpen).Once()

	_, found, err := NewResolver(m).Resolve(context.Background(), "Mosul")
	assert.False(t, found)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
}

func TestResolve_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := mocks.NewMockSearcher(t)
	m.On("Search", mock.Anything, mock.Anything).Return(nil, context.Canceled).Once()

	_, found, err := NewResolver(m).Resolve(ctx, "Mosul")
	assert.False(t, found)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_ExhaustedIsNotFound(t *testing.T) {
	s := &stubSearcher{results: map[placesearch.Query][]placesearch.Result{
		placesearch.FreeText("Palestine/Gaza"): {telAviv},
		placesearch.FreeText("Palestine"):      {palestineTexas},
	}}

	_, found, err := NewResolver(s).Resolve(context.Background(), "Palestine/Gaza")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []placesearch.Query{
		placesearch.FreeText("Palestine/Gaza"),
		placesearch.FreeText("Palestine"),
		placesearch.FreeText("Gaza"),
	}, s.calls)
}

func TestResolve_BlankNameMakesNoCalls(t *testing.T) {
	s := &stubSearcher{}
	_, found, err := NewResolver(s).Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, s.calls)
}

func TestResolve_Idempotent(t *testing.T) {
	s := &stubSearcher{results: map[placesearch.Query][]placesearch.Result{
		placesearch.FreeText("Gaza"): {telAviv, gazaCity},
	}}
	r := NewResolver(s)

	first, found1, err1 := r.Resolve(context.Background(), "Gaza")
	second, found2, err2 := r.Resolve(context.Background(), "Gaza")
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, found1)
	assert.Equal(t, found1, found2)
	assert.Equal(t, first, second)
}

func TestSplitCityCountry(t *testing.T) {
	city, country, ok := splitCityCountry(" Kashgar ,China ")
	assert.True(t, ok)
	assert.Equal(t, "Kashgar", city)
	assert.Equal(t, "China", country)

	_, _, ok = splitCityCountry("Kashgar")
	assert.False(t, ok)
	_, _, ok = splitCityCountry("A, China")
	assert.False(t, ok)
	_, _, ok = splitCityCountry("Ramallah, West Bank, Palestine")
	assert.False(t, ok)
}
