// Package export writes resolved locations in the formats downstream map
// tooling consumes.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/transcript-geo/internal/model"
)

// Format is an output encoding.
type Format string

// Supported formats. FormatShapefile is written with WriteShapefile since it
// spans several files.
const (
	FormatJSON      Format = "json"
	FormatGeoJSON   Format = "geojson"
	FormatXLSX      Format = "xlsx"
	FormatShapefile Format = "shp"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatGeoJSON, FormatXLSX, FormatShapefile:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Write encodes locs to w. Shapefiles are not supported here.
func Write(w io.Writer, f Format, locs []model.GeocodedLocation) error {
	if locs == nil {
		locs = []model.GeocodedLocation{}
	}
	switch f {
	case FormatJSON:
		return writeJSON(w, locs)
	case FormatGeoJSON:
		return writeGeoJSON(w, locs)
	case FormatXLSX:
		return writeXLSX(w, locs)
	case FormatShapefile:
		return eris.New("export: shapefiles must be written with WriteShapefile")
	default:
		return eris.Errorf("export: unknown format %q", f)
	}
}

func writeJSON(w io.Writer, locs []model.GeocodedLocation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(locs), "export: encode json")
}

// FeatureCollection converts locs to GeoJSON point features.
func FeatureCollection(locs []model.GeocodedLocation) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(locs))}
	for _, l := range locs {
		props := map[string]interface{}{
			"name":         l.Name,
			"display_name": l.DisplayName,
		}
		if l.Context != "" {
			props["context"] = l.Context
		}
		if len(l.Quotes) > 0 {
			props["quotes"] = l.Quotes
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{l.Lon, l.Lat}),
			Properties: props,
		})
	}
	return fc
}

func writeGeoJSON(w io.Writer, locs []model.GeocodedLocation) error {
	data, err := json.Marshal(FeatureCollection(locs))
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	_, err = w.Write(append(data, '\n'))
	return eris.Wrap(err, "export: write geojson")
}

var xlsxHeader = []string{"Name", "Latitude", "Longitude", "Display Name", "Context", "Quotes"}

func writeXLSX(w io.Writer, locs []model.GeocodedLocation) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("locations")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, l := range locs {
		row := sheet.AddRow()
		row.AddCell().SetString(l.Name)
		row.AddCell().SetFloat(l.Lat)
		row.AddCell().SetFloat(l.Lon)
		row.AddCell().SetString(l.DisplayName)
		row.AddCell().SetString(l.Context)
		row.AddCell().SetString(joinQuotes(l.Quotes))
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

// joinQuotes renders quotes one per line, prefixed by their timestamp when
// present.
func joinQuotes(quotes []model.Quote) string {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.Timestamp != "" {
			lines = append(lines, "["+q.Timestamp+"] "+q.Text)
			continue
		}
		lines = append(lines, q.Text)
	}
	return strings.Join(lines, "\n")
}
