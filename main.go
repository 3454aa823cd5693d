package main

import (
	"embed"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	log := logger.NewDefaultLogger()
	app := NewApp(log)

	err := wails.Run(&options.App{
		Title:  "meshgen",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
		Logger:   log,
		LogLevel: logger.INFO,
	})
	if err != nil {
		log.Error("Error: " + err.Error())
		os.Exit(1)
	}
}
