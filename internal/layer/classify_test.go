package layer

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		source string
		want   Kind
	}{
		{"https://example.com/tiles/{z}/{x}/{y}.png", KindTile},
		{"https://tile.openstreetmap.org/{z}/{x}/{y}.png", KindTile},
		{"projects/earthengine-public/assets/COPERNICUS/S2", KindEarthEngine},
		{"users/someone/dem", KindEarthEngine},
		{"COPERNICUS/S2_SR_HARMONIZED/20200101", KindEarthEngine},
		{"https://ows.example.org/geoserver/ows?service=WMS&request=GetMap&layers=roads", KindWMS},
		{"https://example.org/mapserv.cgi", KindWMS},
		{"https://example.org/base.wms", KindWMS},
		{"https://example.org/base.tms", KindWMS},
		{"countries.geojson", KindGeoJSON},
		{"data/regions/countries.geojson", KindGeoJSON},
		{"/home/someone/data/points.json", KindGeoJSON},
		{"https://example.org/points.json?v=2", KindGeoJSON},
		{"dem.tif", KindRaster},
		{"https://storage.googleapis.com/bucket/cog.tiff", KindRaster},
		{"gs://bucket/path/cog.tif", KindRaster},
		{"pic.png", KindImage},
		{"https://example.org/photo.JPG", KindImage},
		{"overlay.jpeg", KindImage},
		{"https://example.org/clip.mp4", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.ogg", KindVideo},
		{"", KindUnknown},
		{"   ", KindUnknown},
		{"readme.txt", KindUnknown},
		{"https://example.org/", KindUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.source); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestClassifyJSONSuffixAlwaysGeoJSON(t *testing.T) {
	prefixes := []string{"", "a/", "a/b/", "./a/b/c/", "https://example.org/x/y/", "s3://bucket/k/"}
	for _, prefix := range prefixes {
		for _, name := range []string{"layer.geojson", "layer.json"} {
			src := prefix + name
			if got := Classify(src); got != KindGeoJSON {
				t.Errorf("Classify(%q) = %q, want geojson", src, got)
			}
		}
	}
}

func TestClassifyIsTotal(t *testing.T) {
	inputs := []string{"\x00", "{z}", "////", "projects/", "?", "#frag", "http://", "日本語/テスト/データ", "..\\..\\x.PNG"}
	for _, in := range inputs {
		_ = Classify(in)
	}
}

func TestIsCloudStorage(t *testing.T) {
	if !IsCloudStorage("gs://bucket/a.tif") {
		t.Error("gs:// should be cloud storage")
	}
	if !IsCloudStorage("https://bucket.s3.amazonaws.com/a.tif") {
		t.Error("s3 host should be cloud storage")
	}
	if IsCloudStorage("https://example.org/a.tif") {
		t.Error("example.org is not cloud storage")
	}
}

func TestParseKind(t *testing.T) {
	if got := ParseKind(" GeoJSON "); got != KindGeoJSON {
		t.Errorf("ParseKind = %q", got)
	}
	if got := ParseKind("shapefile"); got != KindUnknown {
		t.Errorf("ParseKind = %q", got)
	}
}
