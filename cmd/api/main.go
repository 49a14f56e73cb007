package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qastats/adapters/api"
	"qastats/internal"
	"qastats/internal/config"
	"qastats/internal/container"

	"github.com/joho/godotenv"
)

// Serves only the JSON API, for deployments without the HTML front end
func main() {
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewConfiguredLogger(appConfig.Logging.Level, appConfig.Logging.Format)
	internal.DefaultLogger = logger

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webAPI := api.NewWebAPI(logger, api.Config{
		Addr:            ":" + appConfig.API.Port,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    appConfig.Data.MaxUploadBytes() + 1<<20,
	}, api.Dependencies{
		Store:       appContainer.Store,
		Comparisons: appContainer.Comparisons,
		Sweeps:      appContainer.Sweeps,
	})

	if err := webAPI.Start(ctx); err != nil {
		logger.Error("API server failed: %v", err)
		os.Exit(1)
	}
}
