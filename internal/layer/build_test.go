package layer

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"unknown kind", Input{Kind: KindUnknown, Source: "x.txt"}, ErrUnsupportedKind},
		{"bogus kind", Input{Kind: "shapefile", Source: "x.shp"}, ErrUnsupportedKind},
		{"missing source", Input{Kind: KindTile}, ErrMissingSource},
		{"blank source", Input{Kind: KindGeoJSON, Source: "   "}, ErrMissingSource},
		{"earthengine without id", Input{Kind: KindEarthEngine}, ErrMissingSource},
		{"image bounds not a literal", Input{Kind: KindImage, Source: "pic.png", Bounds: "not-a-bounds-literal"}, ErrInvalidBounds},
		{"image without bounds", Input{Kind: KindImage, Source: "pic.png"}, ErrInvalidBounds},
		{"video without bounds", Input{Kind: KindVideo, Source: "clip.mp4"}, ErrInvalidBounds},
		{"bounds with one pair", Input{Kind: KindImage, Source: "pic.png", Bounds: "[[1, 2]]"}, ErrInvalidBounds},
		{"bounds south above north", Input{Kind: KindImage, Source: "pic.png", Bounds: "[[10, 0], [5, 10]]"}, ErrInvalidBounds},
		{"bounds west east swapped", Input{Kind: KindImage, Source: "pic.png", Bounds: "[[0, 10], [5, 0]]"}, ErrInvalidBounds},
		{"bounds out of range", Input{Kind: KindImage, Source: "pic.png", Bounds: "[[-91, 0], [5, 10]]"}, ErrInvalidBounds},
		{"bounds NaN", Input{Kind: KindImage, Source: "pic.png", Bounds: "[[.nan, 0], [10, 10]]"}, ErrInvalidBounds},
		{"bounds infinite", Input{Kind: KindImage, Source: "pic.png", Bounds: "[[0, 0], [10, .inf]]"}, ErrInvalidBounds},
		{"bounds as code", Input{Kind: KindImage, Source: "pic.png", Bounds: "__import__('os').system('true')"}, ErrInvalidBounds},
		{"bad vis params", Input{Kind: KindEarthEngine, EEID: "USGS/SRTMGL1_003", VisParams: "{min: 0"}, ErrInvalidVisParams},
		{"vis params scalar", Input{Kind: KindEarthEngine, EEID: "USGS/SRTMGL1_003", VisParams: "hello"}, ErrInvalidVisParams},
		{"wms without scheme", Input{Kind: KindWMS, Source: "ows.example.org/base.wms", WMSLayers: "roads"}, ErrInvalidWMS},
		{"wms without layers", Input{Kind: KindWMS, Source: "https://ows.example.org/base.wms"}, ErrInvalidWMS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Builder
			_, err := b.Build(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildImage(t *testing.T) {
	var b Builder
	def, err := b.Build(Input{Kind: KindImage, Source: " pic.png ", Bounds: "[[10, 20], [11.5, 21]]"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if def.Source != "pic.png" {
		t.Errorf("Source = %q", def.Source)
	}
	want := Bounds{{10, 20}, {11.5, 21}}
	if def.Bounds == nil || *def.Bounds != want {
		t.Errorf("Bounds = %v, want %v", def.Bounds, want)
	}
	if def.Name != "IMAGE-1" {
		t.Errorf("Name = %q, want IMAGE-1", def.Name)
	}
}

func TestBuildDefaultNamesAdvanceOnlyOnSuccess(t *testing.T) {
	var b Builder
	first, err := b.Build(Input{Kind: KindTile, Source: "https://t/{z}/{x}/{y}.png"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(Input{Kind: KindTile}); err == nil {
		t.Fatal("expected failure")
	}
	second, err := b.Build(Input{Kind: KindGeoJSON, Source: "a.geojson"})
	if err != nil {
		t.Fatal(err)
	}
	named, err := b.Build(Input{Kind: KindGeoJSON, Source: "b.geojson", Name: "rivers"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != "TILE-1" || second.Name != "GEOJSON-2" || named.Name != "rivers" {
		t.Errorf("names = %q %q %q", first.Name, second.Name, named.Name)
	}
}

func TestBuildEarthEngine(t *testing.T) {
	var b Builder
	def, err := b.Build(Input{
		Kind:      KindEarthEngine,
		Source:    "projects/earthengine-public/assets/USGS/SRTMGL1_003",
		VisParams: "{'min': 0, 'max': 4000, 'palette': ['006633', 'E5FFCC']}",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if def.EEID != "projects/earthengine-public/assets/USGS/SRTMGL1_003" {
		t.Errorf("EEID = %q", def.EEID)
	}
	want := map[string]interface{}{
		"min":     float64(0),
		"max":     float64(4000),
		"palette": []interface{}{"006633", "E5FFCC"},
	}
	if !reflect.DeepEqual(def.VisParams, want) {
		t.Errorf("VisParams = %#v, want %#v", def.VisParams, want)
	}
}

func TestBuildEarthEngineWithoutSource(t *testing.T) {
	var b Builder
	def, err := b.Build(Input{Kind: KindEarthEngine, EEID: "USGS/SRTMGL1_003"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if def.Source != "" || def.EEID != "USGS/SRTMGL1_003" {
		t.Errorf("def = %+v", def)
	}
}

func TestBuildWMSLayersFromQuery(t *testing.T) {
	var b Builder
	def, err := b.Build(Input{Kind: KindWMS, Source: "https://ows.example.org/ows?SERVICE=WMS&LAYERS=roads,rivers"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if def.WMSLayers != "roads,rivers" {
		t.Errorf("WMSLayers = %q", def.WMSLayers)
	}
}

func TestBuildClassifiesWhenKindBlank(t *testing.T) {
	var b Builder
	def, err := b.Build(Input{Source: "regions.geojson"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if def.Kind != KindGeoJSON {
		t.Errorf("Kind = %q", def.Kind)
	}
}

func TestRasterBoundsOptional(t *testing.T) {
	var b Builder
	def, err := b.Build(Input{Kind: KindRaster, Source: "dem.tif"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if def.Bounds != nil {
		t.Errorf("Bounds = %v, want nil", def.Bounds)
	}
}

func TestDefinitionValidateGeoJSONSources(t *testing.T) {
	inline := map[string]interface{}{"type": "FeatureCollection", "features": []interface{}{}}

	both := Definition{Kind: KindGeoJSON, Source: "a.geojson", InlineData: inline}
	if err := both.Validate(); !errors.Is(err, ErrConflictingSource) {
		t.Errorf("both: %v", err)
	}
	neither := Definition{Kind: KindGeoJSON}
	if err := neither.Validate(); !errors.Is(err, ErrMissingSource) {
		t.Errorf("neither: %v", err)
	}
	onlyInline := Definition{Kind: KindGeoJSON, InlineData: inline}
	if err := onlyInline.Validate(); err != nil {
		t.Errorf("inline: %v", err)
	}
	tileInline := Definition{Kind: KindTile, Source: "https://t/{z}/{x}/{y}", InlineData: inline}
	if err := tileInline.Validate(); !errors.Is(err, ErrConflictingSource) {
		t.Errorf("tile inline: %v", err)
	}
}

func TestFromDrawing(t *testing.T) {
	def, err := FromDrawing("sketch", []byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]}}`))
	if err != nil {
		t.Fatalf("FromDrawing: %v", err)
	}
	if def.Kind != KindGeoJSON || def.Source != "" || def.InlineData["type"] != "Feature" {
		t.Errorf("def = %+v", def)
	}
	if _, err := FromDrawing("bad", []byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object payload")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Definition{
		Kind:      KindEarthEngine,
		EEID:      "x/y/z",
		Bounds:    &Bounds{{0, 0}, {1, 1}},
		VisParams: map[string]interface{}{"bands": []interface{}{"B4"}, "nested": map[string]interface{}{"a": 1.0}},
	}
	c := orig.Clone()
	c.Bounds[1][0] = 5
	c.VisParams["bands"].([]interface{})[0] = "B8"
	c.VisParams["nested"].(map[string]interface{})["a"] = 2.0

	if orig.Bounds[1][0] != 1 {
		t.Error("bounds aliased")
	}
	if orig.VisParams["bands"].([]interface{})[0] != "B4" {
		t.Error("vis params list aliased")
	}
	if orig.VisParams["nested"].(map[string]interface{})["a"] != 1.0 {
		t.Error("nested map aliased")
	}
}
