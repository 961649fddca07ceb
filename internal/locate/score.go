package locate

import (
	"strings"

	"github.com/sells-group/transcript-geo/pkg/placesearch"
)

// Scoring weights. Every bonus and penalty applied by Score is one of these.
const (
	ImportanceWeight    = 100.0
	FeatureMatchBonus   = 200.0
	MajorRankBonus      = 50.0 // place_rank <= MajorRankMax
	MinorRankBonus      = 30.0 // MajorRankMax < place_rank <= MinorRankMax
	SettlementBonus     = 40.0
	BuildingPenalty     = -150.0
	NameMatchBonus      = 30.0
	RegionNameBonus     = 300.0
	RegionNamePenalty   = -1000.0
	RegionBoundsBonus   = 200.0
	RegionBoundsPenalty = -500.0

	MajorRankMax = 12
	MinorRankMax = 16
)

// Rejection reasons returned by Validate.
const (
	RejectBuilding     = "building"
	RejectNotRiver     = "not_river"
	RejectRegionName   = "region_not_in_display_name"
	RejectRegionBounds = "outside_region_bounds"
	RejectNameMismatch = "name_mismatch"
)

// adminPlaceTypes are place/* types that are always structurally valid.
var adminPlaceTypes = map[string]bool{
	"city": true, "town": true, "village": true,
	"country": true, "state": true, "county": true,
}

// settlementTypes earn SettlementBonus when class is place.
var settlementTypes = map[string]bool{
	"city": true, "town": true, "village": true,
	"country": true, "state": true,
}

// Validate decides whether r is a plausible answer for candidate given the
// expectation derived from the original name. It returns "" when r is
// accepted, otherwise a short rejection reason.
func Validate(r placesearch.Result, candidate string, exp Expectation) string {
	// No extractable feature class is "building", so buildings never pass.
	if r.Class == "building" {
		return RejectBuilding
	}
	if exp.Feature == FeatureRiver && !(r.Class == "waterway" && r.Type == "river") {
		return RejectNotRiver
	}
	if exp.HasRegion() {
		if !mentionsRegion(r.DisplayName, exp.Region) {
			return RejectRegionName
		}
		if !WithinBounds(exp.Region, r.Lat, r.Lon) {
			return RejectRegionBounds
		}
	}
	if r.Class == "place" && adminPlaceTypes[r.Type] {
		return ""
	}
	if !nameOverlaps(r.DisplayName, candidate) {
		return RejectNameMismatch
	}
	return ""
}

// nameOverlaps requires some word longer than two characters from the
// candidate's first comma segment to appear in displayName. Segments of
// three characters or fewer are not checked.
func nameOverlaps(displayName, candidate string) bool {
	seg := firstSegment(candidate)
	if runeLen(seg) <= 3 {
		return true
	}
	display := fold(displayName)
	for _, w := range strings.Fields(seg) {
		if runeLen(w) > 2 && strings.Contains(display, fold(w)) {
			return true
		}
	}
	return false
}

// Score ranks a result; higher is better. It is a pure function of its
// inputs.
func Score(r placesearch.Result, candidate string, exp Expectation) float64 {
	s := r.Importance * ImportanceWeight

	if featureMatches(exp.Feature, r) {
		s += FeatureMatchBonus
	}

	// A zero rank means the record carried none.
	switch {
	case r.PlaceRank <= 0:
	case r.PlaceRank <= MajorRankMax:
		s += MajorRankBonus
	case r.PlaceRank <= MinorRankMax:
		s += MinorRankBonus
	}

	if r.Class == "place" && settlementTypes[r.Type] {
		s += SettlementBonus
	}
	if r.Class == "building" || r.Type == "apartments" || r.Type == "tower" {
		s += BuildingPenalty
	}

	if seg := firstSegment(candidate); seg != "" && containsFold(r.DisplayName, seg) {
		s += NameMatchBonus
	}

	if exp.HasRegion() {
		if mentionsRegion(r.DisplayName, exp.Region) {
			s += RegionNameBonus
		} else {
			s += RegionNamePenalty
		}
		if WithinBounds(exp.Region, r.Lat, r.Lon) {
			s += RegionBoundsBonus
		} else {
			s += RegionBoundsPenalty
		}
	}
	return s
}

func featureMatches(f Feature, r placesearch.Result) bool {
	switch f {
	case FeatureRiver:
		return r.Class == "waterway" && r.Type == "river"
	case FeatureMountain:
		return r.Class == "natural" && r.Type == "peak"
	case FeatureSea, FeatureLake:
		return r.Class == "natural" && r.Type == "water"
	default:
		return false
	}
}

// Scored is a validated result with its score.
type Scored struct {
	Result placesearch.Result
	Score  float64
}

// Best validates results and returns the highest scoring survivor. Ties go
// to the earlier result. ok is false when every result was rejected.
func Best(results []placesearch.Result, candidate string, exp Expectation) (best Scored, ok bool) {
	for _, r := range results {
		if Validate(r, candidate, exp) != "" {
			continue
		}
		s := Score(r, candidate, exp)
		if !ok || s > best.Score {
			best = Scored{Result: r, Score: s}
			ok = true
		}
	}
	return best, ok
}
