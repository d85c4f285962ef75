package layer

import (
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Author-typed bounds and vis params are parsed as YAML flow literals. That
// grammar accepts JSON as well as the single-quoted dict/list literals people
// paste from notebooks, and it is data only: nothing is ever evaluated.

// ParseBounds parses "[[south, west], [north, east]]". Blank text yields nil.
func ParseBounds(text string) (*Bounds, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var pairs [][]float64
	if err := yaml.Unmarshal([]byte(text), &pairs); err != nil {
		return nil, invalid(CodeInvalidBounds, "expected [[south, west], [north, east]]")
	}
	if len(pairs) != 2 || len(pairs[0]) != 2 || len(pairs[1]) != 2 {
		return nil, invalid(CodeInvalidBounds, "expected two [lat, lon] pairs")
	}

	b := Bounds{{pairs[0][0], pairs[0][1]}, {pairs[1][0], pairs[1][1]}}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ParseVisParams parses a mapping such as {min: 0, max: 3000, bands: ['B4', 'B3', 'B2']}.
// Blank text yields nil. Values are normalized to their JSON shapes so a
// parsed mapping compares equal to the same mapping read back from a story file.
func ParseVisParams(text string) (map[string]interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil || raw == nil {
		return nil, invalid(CodeInvalidVisParams, "expected a mapping such as {min: 0, max: 3000}")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, invalid(CodeInvalidVisParams, "unsupported value: %v", err)
	}
	var params map[string]interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, invalid(CodeInvalidVisParams, "unsupported value: %v", err)
	}
	return params, nil
}
