package export

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/transcript-geo/internal/model"
)

// DBF attribute widths, in bytes.
const (
	nameWidth    = 80
	displayWidth = 254
	contextWidth = 254
)

// WriteShapefile writes locs as a POINT shapefile. basePath may carry a .shp
// extension or none; the .shx and .dbf siblings are written next to it.
func WriteShapefile(basePath string, locs []model.GeocodedLocation) error {
	base := basePath
	if strings.EqualFold(filepath.Ext(base), ".shp") {
		base = base[:len(base)-len(".shp")]
	}

	w, err := shp.Create(base+".shp", shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", base)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("NAME", nameWidth),
		shp.StringField("DISPLAY", displayWidth),
		shp.StringField("CONTEXT", contextWidth),
	})

	for _, l := range locs {
		n := int(w.Write(&shp.Point{X: l.Lon, Y: l.Lat}))
		for i, v := range []string{
			truncateBytes(l.Name, nameWidth),
			truncateBytes(l.DisplayName, displayWidth),
			truncateBytes(l.Context, contextWidth),
		} {
			if err := w.WriteAttribute(n, i, v); err != nil {
				return eris.Wrapf(err, "export: write attribute for %s", l.Name)
			}
		}
	}
	return nil
}

// truncateBytes shortens s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
