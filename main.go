package main

import (
	"embed"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

//go:embed all:frontend/dist
var assets embed.FS

// isDevMode detects if running in development mode
// Production builds will have embedded assets, dev mode uses live server
func isDevMode() bool {
	return os.Getenv("WAILS_DEV_SERVER") != "" || os.Getenv("FRONTEND_DEVSERVER_URL") != ""
}

func main() {
	logger := log.StandardLogger()
	logger.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
		ForceColors:     true,
	})
	logger.SetOutput(os.Stdout)

	// Set DEV_MODE=1 environment variable when running in development
	devMode := os.Getenv("DEV_MODE") == "1" || isDevMode()
	if devMode {
		logger.SetLevel(log.DebugLevel)
	}

	// Create an instance of the app structure
	app := NewApp(logger)
	app.devMode = devMode

	// Create application with options
	err := wails.Run(&options.App{
		Title:  "MapStory Desktop",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}
