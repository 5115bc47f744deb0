package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"veostudio/internal/database"
	"veostudio/internal/events"
	"veostudio/internal/media"
	"veostudio/internal/services"
	"veostudio/internal/utils"
	"veostudio/internal/video/client"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := utils.LoadEnv(); err != nil {
		log.Printf("no .env loaded: %v", err)
	}

	logLevel := logger.Warn
	if database.IsDevelopment() {
		logLevel = logger.Info
	}
	db, err := database.Init(database.Config{
		Path:     utils.GetEnvString("VEOSTUDIO_DB_PATH", ""),
		LogLevel: logLevel,
	})
	if err != nil {
		fmt.Println("Error opening database:", err)
		return
	}

	pollInterval, err := utils.GetEnvDuration("VEO_POLL_INTERVAL", client.DefaultPollInterval)
	if err != nil {
		log.Printf("ignoring VEO_POLL_INTERVAL: %v", err)
	}
	maxPolls, err := utils.GetEnvInt("VEO_MAX_POLL_ATTEMPTS", 0)
	if err != nil {
		log.Printf("ignoring VEO_MAX_POLL_ATTEMPTS: %v", err)
	}

	svc, err := services.NewServices(db, services.Config{
		MediaDir:   database.GetDefaultMediaDir(),
		APIKey:     utils.GetEnvString("GEMINI_API_KEY", ""),
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		Client: client.Config{
			PollInterval:    pollInterval,
			MaxPollAttempts: maxPolls,
		},
	})
	if err != nil {
		fmt.Println("Error creating services:", err)
		return
	}

	app := NewApp(svc)
	if sqlDB, err := db.DB(); err == nil {
		app.dbClose = sqlDB.Close
	}

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "Veo Studio",
		Width:  1280,
		Height: 860,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: media.Handler(svc.Media),
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "Veo Studio",
		},
		BackgroundColour: &options.RGBA{R: 17, G: 24, B: 39, A: 1},
		OnStartup: func(ctx context.Context) {
			events.EnableRuntimeEmitter()
			app.startup(ctx)
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
