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
	"qastats/ui"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := ui.NewServer(appConfig, appContainer.Store, appContainer.Comparisons, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	webAPI := api.NewWebAPI(logger, api.Config{
		Addr:         ":" + appConfig.API.Port,
		MaxBodyBytes: appConfig.Data.MaxUploadBytes() + 1<<20,
	}, api.Dependencies{
		Store:       appContainer.Store,
		Comparisons: appContainer.Comparisons,
		Sweeps:      appContainer.Sweeps,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx, ":"+appConfig.Server.Port) })
	g.Go(func() error { return webAPI.Start(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("server stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("container shutdown: %v", err)
	}
}
