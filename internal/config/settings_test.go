package config

import (
	"os"
	"path/filepath"
	"testing"

	"mapstory-desktop/internal/basemap"
	"mapstory-desktop/internal/story"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Basemap != basemap.Default || s.DefaultZoom != 2 {
		t.Errorf("settings = %+v", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	in := DefaultSettings()
	in.Basemap = "Esri.WorldImagery"
	in.LastCenterLat, in.LastCenterLon, in.LastZoom = 51.5, -0.12, 11

	if err := SaveSettingsTo(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadSettingsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"basemap":"Google.Hybrid"}`), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettingsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultSettings()
	if s.Basemap != "Google.Hybrid" || s.ExportDir != def.ExportDir || s.ScriptTimeoutSeconds != def.ScriptTimeoutSeconds {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte(`{not json`), 0644)
	if _, err := LoadSettingsFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UserSettings)
		ok     bool
	}{
		{"defaults", func(*UserSettings) {}, true},
		{"empty export dir", func(s *UserSettings) { s.ExportDir = "" }, false},
		{"unknown basemap", func(s *UserSettings) { s.Basemap = "Nope" }, false},
		{"zoom", func(s *UserSettings) { s.DefaultZoom = 25 }, false},
		{"center", func(s *UserSettings) { s.DefaultCenterLat = 100 }, false},
		{"cache", func(s *UserSettings) { s.PayloadCacheEntries = 0 }, false},
		{"timeout", func(s *UserSettings) { s.ScriptTimeoutSeconds = -1 }, false},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		tt.mutate(s)
		err := ValidateSettings(s)
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v", tt.name, err)
		}
	}
}

func TestStartView(t *testing.T) {
	s := DefaultSettings()
	center, zoom := s.StartView()
	if center != (story.LatLon{Lat: 20, Lon: 0}) || zoom != 2 {
		t.Errorf("default start = %v z%d", center, zoom)
	}
	s.LastCenterLat, s.LastCenterLon, s.LastZoom = 48.85, 2.35, 12
	center, zoom = s.StartView()
	if center != (story.LatLon{Lat: 48.85, Lon: 2.35}) || zoom != 12 {
		t.Errorf("last start = %v z%d", center, zoom)
	}
}
