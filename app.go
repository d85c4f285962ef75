package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/posthog/posthog-go"
	log "github.com/sirupsen/logrus"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"mapstory-desktop/internal/authoring"
	"mapstory-desktop/internal/basemap"
	"mapstory-desktop/internal/cache"
	"mapstory-desktop/internal/config"
	"mapstory-desktop/internal/handlers/assetserver"
	"mapstory-desktop/internal/mapsurface"
	"mapstory-desktop/internal/presenter"
	"mapstory-desktop/internal/projector"
	"mapstory-desktop/internal/script"
	"mapstory-desktop/internal/sessionlog"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
	AppVersion  string = "0.0.0-dev"
)

// Events emitted to the frontend besides the map:* events of mapsurface
const (
	EventLog           = "log"
	EventModeChanged   = "mode-changed"
	EventScenesChanged = "scenes-changed"
	EventFormChanged   = "form-changed"
)

// How long the map must rest before its position is written to disk
const positionSaveDelay = 750 * time.Millisecond

var errPresenting = errors.New("a presentation is running: switch back to edit first")

// App struct
type App struct {
	ctx          context.Context
	mu           sync.Mutex
	settings     *config.UserSettings
	settingsPath string
	devMode      bool

	logger    *log.Logger
	logBuf    *sessionlog.Buffer
	verbosity sessionlog.Verbosity

	payloads  *cache.PayloadCache
	assets    *assetserver.Server
	surface   *mapsurface.Surface
	projector *projector.Projector
	repo      *authoring.Repository
	presenter *presenter.Controller

	phClient     posthog.Client
	savePosition func(func())

	// Native dialogs. They run without holding mu.
	chooseExportDir func(defaultDir string) (string, error)
	chooseStoryFile func(defaultDir string) (string, error)
}

// NewApp creates a new App application struct
func NewApp(logger *log.Logger) *App {
	settingsPath := config.GetSettingsPath()
	settings, err := config.LoadSettingsFrom(settingsPath)
	if err != nil {
		logger.Warnf("Failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}
	logger.Infof("Settings loaded from: %s", settingsPath)

	app := newApp(settings, settingsPath, logger)

	// Initialize PostHog
	if PostHogKey != "" {
		phConfig := posthog.Config{
			Endpoint: PostHogHost,
		}
		client, err := posthog.NewWithConfig(PostHogKey, phConfig)
		if err != nil {
			logger.Warnf("Failed to initialize PostHog: %v", err)
		} else {
			app.phClient = client
		}
	}

	return app
}

// newApp wires every component around settings. It touches neither the
// network nor the Wails runtime.
func newApp(settings *config.UserSettings, settingsPath string, logger *log.Logger) *App {
	a := &App{
		settings:     settings,
		settingsPath: settingsPath,
		logger:       logger,
		logBuf:       &sessionlog.Buffer{},
		verbosity:    sessionlog.ParseVerbosity(settings.LogVerbosity),
		savePosition: debounce.New(positionSaveDelay),
	}
	a.chooseExportDir = a.openExportDialog
	a.chooseStoryFile = a.openStoryDialog
	logger.AddHook(sessionlog.NewHook(a.logBuf, func(e sessionlog.Entry) {
		a.emit(EventLog, e)
	}))

	payloads, err := cache.NewPayloadCache(settings.PayloadCacheEntries)
	if err != nil {
		logger.Warnf("Invalid payload cache size %d, using defaults: %v", settings.PayloadCacheEntries, err)
		payloads, _ = cache.NewPayloadCache(config.DefaultSettings().PayloadCacheEntries)
	}
	a.payloads = payloads
	a.assets = assetserver.NewServer(logger.WithField("prefix", "assets"))

	base, err := basemap.Lookup(settings.Basemap)
	if err != nil {
		logger.Warnf("%v, falling back to %s", err, basemap.Default)
		base, _ = basemap.Lookup(basemap.Default)
	}
	a.surface = mapsurface.New(base, a.emit, a.assets, a.payloads)

	runner := script.NewRunner(time.Duration(settings.ScriptTimeoutSeconds) * time.Second)
	a.projector = projector.New(a.surface, runner, logger.WithField("prefix", "map"))

	center, zoom := settings.StartView()
	a.repo = authoring.New(a.projector, logger.WithField("prefix", "author"), projector.View{Center: center, Zoom: zoom})
	a.presenter = presenter.New(a.projector, logger.WithField("prefix", "present"), func(m presenter.Mode) {
		a.emit(EventModeChanged, m)
	})
	a.surface.SyncView(center.Lat, center.Lon, zoom)

	return a
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if a.devMode {
		a.logger.Debug("Development mode: debug logging enabled")
	}

	// Start local asset server
	if err := a.assets.Start(); err != nil {
		a.logger.Errorf("Local files cannot be shown on the map: %v", err)
	}

	// Track app start
	a.TrackEvent("app_started", map[string]interface{}{
		"version": a.GetAppVersion(),
	})
}

// emit forwards an event to the frontend once the runtime is up
func (a *App) emit(event string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, event, data...)
}

// context returns the app context for work that may be cancelled with the window
func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *App) openExportDialog(defaultDir string) (string, error) {
	return wailsRuntime.OpenDirectoryDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:            "Export Story",
		DefaultDirectory: defaultDir,
	})
}

func (a *App) openStoryDialog(defaultDir string) (string, error) {
	return wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:            "Import Story",
		DefaultDirectory: defaultDir,
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Story (*.json)", Pattern: "*.json"},
		},
	})
}

// authoring fails while the presentation controls own the map
func (a *App) authoring() error {
	if a.presenter.Mode() == presenter.Presenting {
		return errPresenting
	}
	return nil
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if a.phClient != nil {
		a.phClient.Enqueue(posthog.Capture{
			DistinctId: "backend_user",
			Event:      event,
			Properties: props,
		})
	}
}

// Shutdown cleans up resources
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	settings := *a.settings
	a.mu.Unlock()
	if err := config.SaveSettingsTo(a.settingsPath, &settings); err != nil {
		a.logger.Warnf("Failed to save settings on exit: %v", err)
	}
	if a.phClient != nil {
		a.phClient.Close()
	}
}

// GetAppVersion returns the current application version
func (a *App) GetAppVersion() string {
	return AppVersion
}
