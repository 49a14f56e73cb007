package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"qastats/adapters/excel"
	"qastats/app"
	"qastats/internal"
	"qastats/internal/config"
	"qastats/internal/workbook"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Storage
	Store *workbook.Store

	// Services
	Comparisons *app.ComparisonService
	Sweeps      *app.SweepService

	cancelJanitor context.CancelFunc
	janitorDone   sync.WaitGroup
}

// New creates the container and starts background eviction of expired uploads
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewConfiguredLogger(cfg.Logging.Level, cfg.Logging.Format)
	}

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.MaxRows = cfg.Data.MaxRows

	c := &Container{
		Config: cfg,
		Logger: logger,
		Store:  workbook.NewStore(cfg.Data.WorkbookTTL, cfg.Data.MaxUploadBytes(), readerConfig, logger),
	}
	c.Comparisons = app.NewComparisonService(logger, cfg.Analysis.DefaultConfidence)
	c.Sweeps = app.NewSweepService(c.Comparisons, cfg.Analysis.SweepWorkers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelJanitor = cancel
	c.janitorDone.Add(1)
	go func() {
		defer c.janitorDone.Done()
		c.Store.RunJanitor(ctx, janitorInterval(cfg.Data.WorkbookTTL))
	}()

	return c, nil
}

// janitorInterval checks a few times per TTL, at most once a minute
func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}

// Shutdown stops background work
func (c *Container) Shutdown(ctx context.Context) error {
	c.cancelJanitor()

	done := make(chan struct{})
	go func() {
		c.janitorDone.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
