package input

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/transcript-geo/internal/model"
)

// ParseXLSX reads locations from the first sheet of a workbook. The first
// row is a header; recognised columns are name, context, quote and
// timestamp, in any order and case. Rows with the same name as the row
// above add another quote to that location.
func ParseXLSX(data []byte) ([]model.ExtractedLocation, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "input: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("input: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return []model.ExtractedLocation{}, nil
	}

	cols := map[string]int{}
	for i, cell := range sheet.Rows[0].Cells {
		cols[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, eris.New("input: xlsx header has no name column")
	}

	get := func(row *xlsx.Row, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[i].String())
	}

	locs := []model.ExtractedLocation{}
	for _, row := range sheet.Rows[1:] {
		if row == nil || nameCol >= len(row.Cells) {
			continue
		}
		name := strings.TrimSpace(row.Cells[nameCol].String())
		if name == "" {
			continue
		}

		var quote *model.Quote
		if text := get(row, "quote"); text != "" {
			quote = &model.Quote{Text: text, Timestamp: get(row, "timestamp")}
		}

		if n := len(locs); n > 0 && locs[n-1].Name == name {
			if quote != nil {
				locs[n-1].Quotes = append(locs[n-1].Quotes, *quote)
			}
			continue
		}

		loc := model.ExtractedLocation{Name: name, Context: get(row, "context")}
		if quote != nil {
			loc.Quotes = []model.Quote{*quote}
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
