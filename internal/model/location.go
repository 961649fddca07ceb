// Package model defines the location records exchanged between the
// extraction step, the resolver and exporters.
package model

// Quote is an excerpt from the transcript that mentions a location. It is
// carried through resolution untouched.
type Quote struct {
	Text      string `json:"text" yaml:"text"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// ExtractedLocation is a raw place name pulled from a transcript by the
// upstream extraction step.
type ExtractedLocation struct {
	Name    string  `json:"name" yaml:"name"`
	Context string  `json:"context,omitempty" yaml:"context,omitempty"`
	Quotes  []Quote `json:"quotes,omitempty" yaml:"quotes,omitempty"`
}

// GeocodedLocation is a resolved point. Name is always the original raw
// name, never the cleaned query that matched.
type GeocodedLocation struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
	Context     string  `json:"context,omitempty"`
	Quotes      []Quote `json:"quotes,omitempty"`
}

// WithSource returns a copy of g carrying the context and quotes of the
// extracted location it was resolved from.
func (g GeocodedLocation) WithSource(src ExtractedLocation) GeocodedLocation {
	g.Context = src.Context
	if len(src.Quotes) > 0 {
		g.Quotes = append([]Quote(nil), src.Quotes...)
	}
	return g
}
