package layer

import "testing"

func TestParseGeoJSON(t *testing.T) {
	good := []string{
		`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`,
		`{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":null}`,
		`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`,
	}
	for _, doc := range good {
		if _, err := ParseGeoJSON([]byte(doc)); err != nil {
			t.Errorf("%s: %v", doc, err)
		}
	}

	bad := []string{``, `[1,2]`, `{}`, `{"type":"Banana","coordinates":[]}`, `{"type":"Point","coordinates":"x"}`}
	for _, doc := range bad {
		if _, err := ParseGeoJSON([]byte(doc)); err == nil {
			t.Errorf("%q: expected error", doc)
		}
	}
}

func TestDataBounds(t *testing.T) {
	obj := map[string]interface{}{
		"type": "FeatureCollection",
		"features": []interface{}{
			map[string]interface{}{
				"type":       "Feature",
				"properties": map[string]interface{}{},
				"geometry":   map[string]interface{}{"type": "Point", "coordinates": []interface{}{10.0, 50.0}},
			},
			map[string]interface{}{
				"type":       "Feature",
				"properties": map[string]interface{}{},
				"geometry":   map[string]interface{}{"type": "Point", "coordinates": []interface{}{12.0, 48.0}},
			},
		},
	}
	b, err := DataBounds(obj)
	if err != nil {
		t.Fatal(err)
	}
	want := Bounds{{48, 10}, {50, 12}}
	if b != want {
		t.Errorf("bounds = %v, want %v", b, want)
	}

	empty := map[string]interface{}{"type": "FeatureCollection", "features": []interface{}{}}
	if _, err := DataBounds(empty); err == nil {
		t.Error("expected error for empty collection")
	}
}
