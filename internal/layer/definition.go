package layer

import (
	"math"
	"strings"

	json "github.com/goccy/go-json"
)

// Bounds is a rectangle in the [[south, west], [north, east]] layout the map widget expects.
type Bounds [2][2]float64

// WorldBounds covers the whole map.
var WorldBounds = Bounds{{-90, -180}, {90, 180}}

func (b Bounds) South() float64 { return b[0][0] }
func (b Bounds) West() float64  { return b[0][1] }
func (b Bounds) North() float64 { return b[1][0] }
func (b Bounds) East() float64  { return b[1][1] }

// Validate checks geographic range and that the corners are ordered.
func (b Bounds) Validate() error {
	for _, corner := range b {
		if !finite(corner[0]) || !finite(corner[1]) {
			return invalid(CodeInvalidBounds, "corner [%g, %g] is not a number", corner[0], corner[1])
		}
		if corner[0] < -90 || corner[0] > 90 {
			return invalid(CodeInvalidBounds, "latitude %g out of range", corner[0])
		}
		if corner[1] < -180 || corner[1] > 180 {
			return invalid(CodeInvalidBounds, "longitude %g out of range", corner[1])
		}
	}
	if b.South() >= b.North() {
		return invalid(CodeInvalidBounds, "south %g must be below north %g", b.South(), b.North())
	}
	if b.West() >= b.East() {
		return invalid(CodeInvalidBounds, "west %g must be left of east %g", b.West(), b.East())
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Definition describes one overlay. It is plain data: rendering it is the
// projector's job.
type Definition struct {
	Kind   Kind    `json:"kind"`
	Source string  `json:"source,omitempty"`
	Name   string  `json:"name"`
	Bounds *Bounds `json:"bounds,omitempty"`

	// Earth Engine only.
	EEID      string                 `json:"eeId,omitempty"`
	VisParams map[string]interface{} `json:"visParams,omitempty"`

	// GeoJSON produced by drawing on the map instead of a file reference.
	InlineData map[string]interface{} `json:"inlineData,omitempty"`

	// Comma-separated WMS layer names.
	WMSLayers string `json:"wmsLayers,omitempty"`
}

// Validate enforces the invariants a definition must hold before it can be
// attached to a scene or rendered.
func (d Definition) Validate() error {
	switch d.Kind {
	case KindTile, KindGeoJSON, KindImage, KindRaster, KindWMS, KindVideo, KindEarthEngine:
	default:
		return invalid(CodeUnsupportedKind, "%q", d.Kind)
	}

	if d.InlineData != nil {
		if d.Kind != KindGeoJSON {
			return invalid(CodeConflictingSource, "inline data is only valid for geojson, not %s", d.Kind)
		}
		if d.Source != "" {
			return invalid(CodeConflictingSource, "geojson layer %q has both a source and inline data", d.Name)
		}
	} else if d.Kind.RequiresSource() && strings.TrimSpace(d.Source) == "" {
		return invalid(CodeMissingSource, "%s layer needs a source", d.Kind)
	}

	if d.Kind == KindEarthEngine && d.EEID == "" {
		return invalid(CodeMissingSource, "earthengine layer needs an asset ID")
	}

	if d.Bounds == nil {
		if d.Kind.RequiresBounds() {
			return invalid(CodeInvalidBounds, "%s layer needs bounds", d.Kind)
		}
	} else if err := d.Bounds.Validate(); err != nil {
		return err
	}

	if d.Kind == KindWMS {
		lower := strings.ToLower(d.Source)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return invalid(CodeInvalidWMS, "URL must start with http or https")
		}
		if strings.TrimSpace(d.WMSLayers) == "" {
			return invalid(CodeInvalidWMS, "no layer names given")
		}
	}
	return nil
}

// Clone returns a deep copy so edits to the copy never reach the original.
func (d Definition) Clone() Definition {
	out := d
	if d.Bounds != nil {
		b := *d.Bounds
		out.Bounds = &b
	}
	out.VisParams = cloneObject(d.VisParams)
	out.InlineData = cloneObject(d.InlineData)
	return out
}

// FromDrawing builds a geojson definition around a geometry drawn on the map.
func FromDrawing(name string, data []byte) (Definition, error) {
	if _, err := ParseGeoJSON(data); err != nil {
		return Definition{}, invalid(CodeMissingSource, "drawn geometry is not valid GeoJSON: %v", err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return Definition{}, invalid(CodeMissingSource, "drawn geometry is not a GeoJSON object")
	}
	def := Definition{Kind: KindGeoJSON, Name: name, InlineData: obj}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func cloneObject(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneObject(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return t
	}
}

// ZoomMargin is the padding, in degrees, applied around bounds when zooming to them.
const ZoomMargin = 0.01

// Padded grows the rectangle by margin degrees on every side, clamped to the map.
func (b Bounds) Padded(margin float64) Bounds {
	return Bounds{
		{clamp(b.South()-margin, -90, 90), clamp(b.West()-margin, -180, 180)},
		{clamp(b.North()+margin, -90, 90), clamp(b.East()+margin, -180, 180)},
	}
}

// PointBounds is the padded rectangle around a single point.
func PointBounds(lat, lon float64) Bounds {
	return Bounds{{lat, lon}, {lat, lon}}.Padded(ZoomMargin)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
