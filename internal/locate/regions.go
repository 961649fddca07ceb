package locate

import (
	"strings"

	"github.com/twpayne/go-geom"
)

type regionBox struct {
	name                           string
	minLat, maxLat, minLon, maxLon float64
	// aliases are extra display-name spellings accepted as evidence of the
	// region besides its name.
	aliases []string
}

// regionBoxes are approximate bounding boxes for every region the
// expectation extractor can produce.
var regionBoxes = []regionBox{
	{name: "palestine", minLat: 29.5, maxLat: 33.5, minLon: 34.0, maxLon: 36.0, aliases: []string{"palestinian territor"}},
	{name: "israel", minLat: 29.4, maxLat: 33.4, minLon: 34.2, maxLon: 35.9},
	{name: "lebanon", minLat: 33.0, maxLat: 34.7, minLon: 35.1, maxLon: 36.7},
	{name: "syria", minLat: 32.3, maxLat: 37.4, minLon: 35.7, maxLon: 42.4},
	{name: "jordan", minLat: 29.1, maxLat: 33.4, minLon: 34.9, maxLon: 39.3},
	{name: "iraq", minLat: 29.0, maxLat: 37.4, minLon: 38.8, maxLon: 48.6},
	{name: "iran", minLat: 25.0, maxLat: 39.8, minLon: 44.0, maxLon: 63.4},
	{name: "egypt", minLat: 22.0, maxLat: 31.7, minLon: 24.7, maxLon: 36.9},
	{name: "saudi arabia", minLat: 16.3, maxLat: 32.2, minLon: 34.5, maxLon: 55.7},
	{name: "yemen", minLat: 12.1, maxLat: 19.0, minLon: 42.5, maxLon: 54.6},
	{name: "turkey", minLat: 35.8, maxLat: 42.1, minLon: 25.6, maxLon: 44.8, aliases: []string{"türkiye"}},
	{name: "russia", minLat: 41.1, maxLat: 81.9, minLon: 19.6, maxLon: 180.0},
	{name: "ukraine", minLat: 44.3, maxLat: 52.4, minLon: 22.1, maxLon: 40.3},
	{name: "china", minLat: 18.1, maxLat: 53.6, minLon: 73.5, maxLon: 134.8},
	{name: "india", minLat: 6.7, maxLat: 35.7, minLon: 68.1, maxLon: 97.4},
	{name: "afghanistan", minLat: 29.3, maxLat: 38.5, minLon: 60.5, maxLon: 75.0},
	{name: "pakistan", minLat: 23.6, maxLat: 37.1, minLon: 60.8, maxLon: 77.8},
}

var (
	regionBounds  = make(map[string]*geom.Bounds, len(regionBoxes))
	regionAliases = make(map[string][]string, len(regionBoxes))
)

func init() {
	for _, rb := range regionBoxes {
		// Bounds are stored x=lon, y=lat.
		regionBounds[rb.name] = geom.NewBounds(geom.XY).Set(rb.minLon, rb.minLat, rb.maxLon, rb.maxLat)
		regionAliases[rb.name] = append([]string{rb.name}, rb.aliases...)
	}
}

// RegionBounds returns the bounding box for region, if one is known.
func RegionBounds(region string) (*geom.Bounds, bool) {
	b, ok := regionBounds[region]
	return b, ok
}

// WithinBounds reports whether (lat, lon) lies inside region's box, edges
// included. Regions without a box impose no constraint.
func WithinBounds(region string, lat, lon float64) bool {
	b, ok := regionBounds[region]
	if !ok {
		return true
	}
	return b.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// mentionsRegion reports whether displayName names region or one of its
// aliases.
func mentionsRegion(displayName, region string) bool {
	folded := fold(displayName)
	names, ok := regionAliases[region]
	if !ok {
		names = []string{region}
	}
	for _, n := range names {
		if strings.Contains(folded, fold(n)) {
			return true
		}
	}
	return false
}
