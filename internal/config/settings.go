package config

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"mapstory-desktop/internal/basemap"
	"mapstory-desktop/internal/sessionlog"
	"mapstory-desktop/internal/story"
)

// UserSettings represents persistent user preferences
type UserSettings struct {
	// Export settings
	ExportDir string `json:"exportDir"`

	// Default map settings
	Basemap          string  `json:"basemap"`
	DefaultZoom      int     `json:"defaultZoom"`
	DefaultCenterLat float64 `json:"defaultCenterLat"`
	DefaultCenterLon float64 `json:"defaultCenterLon"`

	// Last viewed position, restored on the next launch
	LastCenterLat float64 `json:"lastCenterLat"`
	LastCenterLon float64 `json:"lastCenterLon"`
	LastZoom      int     `json:"lastZoom"`

	// Session log rendering: "brief" or "full"
	LogVerbosity string `json:"logVerbosity"`

	// Number of GeoJSON payloads kept in memory
	PayloadCacheEntries int `json:"payloadCacheEntries"`

	// Upper bound on a single run of scene code
	ScriptTimeoutSeconds int `json:"scriptTimeoutSeconds"`
}

// DefaultSettings returns default user settings
func DefaultSettings() *UserSettings {
	homeDir, _ := os.UserHomeDir()

	return &UserSettings{
		ExportDir:            filepath.Join(homeDir, "Documents", "mapstory"),
		Basemap:              basemap.Default,
		DefaultZoom:          2,
		DefaultCenterLat:     20,
		DefaultCenterLon:     0,
		LogVerbosity:         sessionlog.Brief.String(),
		PayloadCacheEntries:  64,
		ScriptTimeoutSeconds: 5,
	}
}

// GetSettingsPath returns the OS-specific settings file path
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".mapstory", "desktop", "settings", "settings.json")
}

// LoadSettings loads user settings from the default location
func LoadSettings() (*UserSettings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from path, filling missing fields with defaults.
// A missing file yields the defaults.
func LoadSettingsFrom(path string) (*UserSettings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	// Merge with defaults for any missing fields
	defaults := DefaultSettings()
	if settings.ExportDir == "" {
		settings.ExportDir = defaults.ExportDir
	}
	if settings.Basemap == "" {
		settings.Basemap = defaults.Basemap
	}
	if settings.DefaultZoom == 0 {
		settings.DefaultZoom = defaults.DefaultZoom
	}
	if settings.LogVerbosity == "" {
		settings.LogVerbosity = defaults.LogVerbosity
	}
	if settings.PayloadCacheEntries == 0 {
		settings.PayloadCacheEntries = defaults.PayloadCacheEntries
	}
	if settings.ScriptTimeoutSeconds == 0 {
		settings.ScriptTimeoutSeconds = defaults.ScriptTimeoutSeconds
	}

	return &settings, nil
}

// SaveSettings saves user settings to the default location
func SaveSettings(settings *UserSettings) error {
	return SaveSettingsTo(GetSettingsPath(), settings)
}

// SaveSettingsTo writes settings to path as indented JSON.
func SaveSettingsTo(path string, settings *UserSettings) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ValidateSettings checks settings coming back from the settings form
func ValidateSettings(settings *UserSettings) error {
	if settings.ExportDir == "" {
		return fmt.Errorf("export directory cannot be empty")
	}
	if _, err := basemap.Lookup(settings.Basemap); err != nil {
		return err
	}
	if settings.DefaultZoom < story.MinZoom || settings.DefaultZoom > story.MaxZoom {
		return fmt.Errorf("default zoom must be between %d and %d", story.MinZoom, story.MaxZoom)
	}
	center := story.LatLon{Lat: settings.DefaultCenterLat, Lon: settings.DefaultCenterLon}
	if !center.Valid() {
		return fmt.Errorf("default center is out of range")
	}
	if settings.PayloadCacheEntries <= 0 {
		return fmt.Errorf("payload cache size must be positive")
	}
	if settings.ScriptTimeoutSeconds <= 0 {
		return fmt.Errorf("script timeout must be positive")
	}
	return nil
}

// StartView returns where the map opens: the last viewed position if one
// was saved, otherwise the configured default.
func (s *UserSettings) StartView() (story.LatLon, int) {
	if s.LastZoom >= story.MinZoom && s.LastZoom <= story.MaxZoom {
		last := story.LatLon{Lat: s.LastCenterLat, Lon: s.LastCenterLon}
		if last.Valid() {
			return last, s.LastZoom
		}
	}
	return story.LatLon{Lat: s.DefaultCenterLat, Lon: s.DefaultCenterLon}, s.DefaultZoom
}
