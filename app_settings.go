package main

import (
	"fmt"

	"mapstory-desktop/internal/basemap"
	"mapstory-desktop/internal/config"
	"mapstory-desktop/internal/mapsurface"
	"mapstory-desktop/internal/sessionlog"
)

// ===================
// Settings Management
// ===================

// GetSettings returns current user settings
func (a *App) GetSettings() (*config.UserSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Return a copy to prevent external modifications
	settingsCopy := *a.settings
	return &settingsCopy, nil
}

// SaveSettings saves user settings to disk and updates app state
func (a *App) SaveSettings(settings *config.UserSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := config.ValidateSettings(settings); err != nil {
		return err
	}

	if err := config.SaveSettingsTo(a.settingsPath, settings); err != nil {
		return err
	}

	if settings.Basemap != a.settings.Basemap {
		a.applyBasemap(settings.Basemap)
	}
	a.payloads.Resize(settings.PayloadCacheEntries)
	a.verbosity = sessionlog.ParseVerbosity(settings.LogVerbosity)

	// Update app state
	saved := *settings
	a.settings = &saved

	// Note: the script timeout requires app restart to take effect
	a.logger.Info("Settings saved. Script timeout will apply on next restart.")

	return nil
}

// GetSettingsPath returns the OS-specific settings file path
func (a *App) GetSettingsPath() string {
	return a.settingsPath
}

// SaveMapPosition records where the user left the map. Writes to disk are
// debounced so a panning map does not rewrite the settings file on every move.
func (a *App) SaveMapPosition(lat, lon float64, zoom int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.surface.SyncView(lat, lon, zoom)
	a.settings.LastCenterLat = lat
	a.settings.LastCenterLon = lon
	a.settings.LastZoom = zoom

	a.savePosition(a.persistSettings)
}

// persistSettings writes a snapshot of the settings; it runs off the UI path.
func (a *App) persistSettings() {
	a.mu.Lock()
	snapshot := *a.settings
	a.mu.Unlock()

	if err := config.SaveSettingsTo(a.settingsPath, &snapshot); err != nil {
		a.logger.Warnf("Failed to save map position: %v", err)
		return
	}
	a.logger.Debugf("Saved map position: lat=%.6f, lon=%.6f, zoom=%d",
		snapshot.LastCenterLat, snapshot.LastCenterLon, snapshot.LastZoom)
}

// GetMapState returns the layer stack and viewport so a reloaded view can redraw
func (a *App) GetMapState() mapsurface.State {
	return a.surface.State()
}

// ===================
// Basemaps
// ===================

// GetBasemaps lists the available base layers
func (a *App) GetBasemaps() []basemap.Basemap {
	names := basemap.Names()
	out := make([]basemap.Basemap, 0, len(names))
	for _, name := range names {
		b, _ := basemap.Lookup(name)
		out = append(out, b)
	}
	return out
}

// SetBasemap swaps the base layer and remembers the choice
func (a *App) SetBasemap(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.applyBasemap(name); err != nil {
		return err
	}
	a.settings.Basemap = name
	if err := config.SaveSettingsTo(a.settingsPath, a.settings); err != nil {
		return fmt.Errorf("basemap changed but not saved: %w", err)
	}
	return nil
}

func (a *App) applyBasemap(name string) error {
	b, err := basemap.Lookup(name)
	if err != nil {
		return err
	}
	a.surface.SetBasemap(b)
	a.logger.Infof("Basemap set to %s", name)
	return nil
}

// ===================
// Session log
// ===================

// GetLogs renders the session log at the current verbosity
func (a *App) GetLogs() []sessionlog.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logBuf.View(a.verbosity)
}

// SetLogVerbosity switches between "brief" and "full" and returns the log
// rendered at the new setting
func (a *App) SetLogVerbosity(verbosity string) []sessionlog.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.verbosity = sessionlog.ParseVerbosity(verbosity)
	a.settings.LogVerbosity = a.verbosity.String()
	return a.logBuf.View(a.verbosity)
}
