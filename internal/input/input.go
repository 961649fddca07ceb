// Package input loads batches of extracted locations from disk.
package input

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/transcript-geo/internal/model"
)

// envelope is the object form of a batch: {"locations": [...]}.
type envelope struct {
	Locations []model.ExtractedLocation `json:"locations" yaml:"locations"`
}

// Load reads the batch at src, a local path or an http(s) or ftp URL. The
// format follows the extension: .yaml and .yml are YAML, .xlsx is a
// workbook, anything else is JSON.
func Load(ctx context.Context, src string) ([]model.ExtractedLocation, error) {
	rc, err := Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "input: read %s", src)
	}

	var locs []model.ExtractedLocation
	switch ext(src) {
	case ".yaml", ".yml":
		locs, err = ParseYAML(data)
	case ".xlsx":
		locs, err = ParseXLSX(data)
	default:
		locs, err = ParseJSON(data)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "input: parse %s", src)
	}
	return locs, nil
}

// ParseJSON decodes either a JSON array of locations or an object with a
// "locations" array.
func ParseJSON(data []byte) ([]model.ExtractedLocation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, eris.New("input: empty document")
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, eris.Wrap(err, "input: decode json object")
		}
		return nonNil(env.Locations), nil
	}

	var locs []model.ExtractedLocation
	if err := json.Unmarshal(trimmed, &locs); err != nil {
		return nil, eris.Wrap(err, "input: decode json array")
	}
	return nonNil(locs), nil
}

// ParseYAML decodes a YAML list of locations or a mapping with a
// "locations" key.
func ParseYAML(data []byte) ([]model.ExtractedLocation, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, eris.Wrap(err, "input: decode yaml")
	}
	if len(node.Content) == 0 {
		return nil, eris.New("input: empty document")
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var env envelope
		if err := root.Decode(&env); err != nil {
			return nil, eris.Wrap(err, "input: decode yaml mapping")
		}
		return nonNil(env.Locations), nil
	case yaml.SequenceNode:
		var locs []model.ExtractedLocation
		if err := root.Decode(&locs); err != nil {
			return nil, eris.Wrap(err, "input: decode yaml list")
		}
		return nonNil(locs), nil
	default:
		return nil, eris.New("input: expected a list or a mapping with locations")
	}
}

func nonNil(locs []model.ExtractedLocation) []model.ExtractedLocation {
	if locs == nil {
		return []model.ExtractedLocation{}
	}
	return locs
}
