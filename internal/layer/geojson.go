package layer

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON decodes a FeatureCollection, a Feature or a bare geometry.
func ParseGeoJSON(data []byte) (orb.Geometry, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("not a GeoJSON object: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		coll := make(orb.Collection, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry != nil {
				coll = append(coll, f.Geometry)
			}
		}
		return coll, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return f.Geometry, nil
	case "":
		return nil, fmt.Errorf("GeoJSON object has no type")
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}
	return g.Geometry(), nil
}

// DataBounds is the extent of inline GeoJSON. A single point yields an
// empty rectangle, so callers pad it before fitting the map.
func DataBounds(obj map[string]interface{}) (Bounds, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return Bounds{}, err
	}
	g, err := ParseGeoJSON(data)
	if err != nil {
		return Bounds{}, err
	}
	if g == nil {
		return Bounds{}, fmt.Errorf("GeoJSON has no geometry")
	}
	if coll, ok := g.(orb.Collection); ok && len(coll) == 0 {
		return Bounds{}, fmt.Errorf("GeoJSON has no geometry")
	}
	b := g.Bound()
	return Bounds{{b.Min.Lat(), b.Min.Lon()}, {b.Max.Lat(), b.Max.Lon()}}, nil
}
