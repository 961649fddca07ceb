package locate

import (
	"regexp"
	"strings"
)

// Feature is a coarse geographic feature class inferred from a name.
type Feature string

// Features the extractor can infer.
const (
	FeatureNone     Feature = ""
	FeatureRiver    Feature = "river"
	FeatureMountain Feature = "mountain"
	FeatureSea      Feature = "sea"
	FeatureLake     Feature = "lake"
	FeatureDesert   Feature = "desert"
	FeatureValley   Feature = "valley"
)

// Expectation is what the raw name tells us about the right answer before
// any search runs. Empty fields mean no constraint.
type Expectation struct {
	Region  string  `json:"region,omitempty"`
	Feature Feature `json:"feature,omitempty"`
}

// HasRegion reports whether a region was detected.
func (e Expectation) HasRegion() bool { return e.Region != "" }

type featureKeyword struct {
	word    string
	feature Feature
	// wholeWord keywords are too short to match inside other words.
	wholeWord bool
}

// featureKeywords is checked in order as case-insensitive substrings of the
// name; the first hit wins.
var featureKeywords = []featureKeyword{
	{word: "river", feature: FeatureRiver},
	{word: "creek", feature: FeatureRiver},
	{word: "stream", feature: FeatureRiver},
	{word: "tributary", feature: FeatureRiver},
	{word: "mountain", feature: FeatureMountain},
	{word: "mount", feature: FeatureMountain},
	{word: "mt", feature: FeatureMountain, wholeWord: true},
	{word: "peak", feature: FeatureMountain},
	{word: "sea", feature: FeatureSea},
	{word: "lake", feature: FeatureLake},
	{word: "desert", feature: FeatureDesert},
	{word: "valley", feature: FeatureValley},
}

type regionPattern struct {
	pattern *regexp.Regexp
	region  string
}

// regionPatterns is checked in order; the first match wins. Palestine comes
// before Israel so names like "Gaza, Israel" gate on the narrower region.
var regionPatterns = []regionPattern{
	{regexp.MustCompile(`(?i)\b(?:palestin\w*|gaza|west bank|ramallah|hebron|jenin|nablus|rafah|khan yunis)\b`), "palestine"},
	{regexp.MustCompile(`(?i)\b(?:israel\w*|tel aviv|haifa|negev)\b`), "israel"},
	{regexp.MustCompile(`(?i)\b(?:leban\w*|beirut)\b`), "lebanon"},
	{regexp.MustCompile(`(?i)\b(?:syria\w*|damascus|aleppo|homs|idlib)\b`), "syria"},
	{regexp.MustCompile(`(?i)\b(?:jordan\w*|amman)\b`), "jordan"},
	{regexp.MustCompile(`(?i)\b(?:iraq\w*|baghdad|mosul|basra|fallujah)\b`), "iraq"},
	{regexp.MustCompile(`(?i)\b(?:iran\w*|tehran|persia\w*|isfahan)\b`), "iran"},
	{regexp.MustCompile(`(?i)\b(?:egypt\w*|cairo|alexandria|sinai)\b`), "egypt"},
	{regexp.MustCompile(`(?i)\b(?:saudi\w*|riyadh|mecca|medina|jeddah)\b`), "saudi arabia"},
	{regexp.MustCompile(`(?i)\b(?:yemen\w*|sanaa|aden)\b`), "yemen"},
	{regexp.MustCompile(`(?i)\b(?:turkey|turkish|t[üu]rkiye|istanbul|ankara)\b`), "turkey"},
	{regexp.MustCompile(`(?i)\b(?:russia\w*|moscow|siberia\w*|st\.? petersburg)\b`), "russia"},
	{regexp.MustCompile(`(?i)\b(?:ukrain\w*|kyiv|kiev|kharkiv|odesa|odessa|donbas\w*|mariupol)\b`), "ukraine"},
	{regexp.MustCompile(`(?i)\b(?:china|chinese|beijing|shanghai|xinjiang|tibet\w*)\b`), "china"},
	{regexp.MustCompile(`(?i)\b(?:india|new delhi|delhi|mumbai|kolkata)\b`), "india"},
	{regexp.MustCompile(`(?i)\b(?:afghan\w*|kabul|kandahar)\b`), "afghanistan"},
	{regexp.MustCompile(`(?i)\b(?:pakistan\w*|islamabad|karachi|lahore)\b`), "pakistan"},
}

// Expect infers the expected region and feature class from a raw name.
func Expect(name string) Expectation {
	return Expectation{
		Region:  detectRegion(name),
		Feature: detectFeature(name),
	}
}

func detectFeature(name string) Feature {
	folded := fold(name)
	padded := wordPadded(name)
	for _, kw := range featureKeywords {
		if kw.wholeWord {
			if strings.Contains(padded, " "+kw.word+" ") {
				return kw.feature
			}
			continue
		}
		if strings.Contains(folded, kw.word) {
			return kw.feature
		}
	}
	return FeatureNone
}

func detectRegion(name string) string {
	for _, rp := range regionPatterns {
		if rp.pattern.MatchString(name) {
			return rp.region
		}
	}
	return ""
}
