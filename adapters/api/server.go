package api

import (
	"context"
	"net/http"
	"time"

	"qastats/app"
	"qastats/internal"
	"qastats/internal/workbook"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the JSON API exposes
type Dependencies struct {
	Store       *workbook.Store
	Comparisons *app.ComparisonService
	Sweeps      *app.SweepService
}

// Config holds the listener settings
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// WebAPI serves the JSON API
type WebAPI struct {
	router *chi.Mux
	logger *internal.Logger
	server *http.Server
	config Config
}

// NewWebAPI builds the router
func NewWebAPI(logger *internal.Logger, config Config, deps Dependencies) *WebAPI {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	h := NewHandler(deps)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(Logger(logger))
	router.Use(middleware.Recoverer)
	if config.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSize(config.MaxBodyBytes))
	}

	router.Get("/healthz", h.Health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/workbooks", func(r chi.Router) {
		r.Get("/", h.ListWorkbooks)
		r.Post("/", h.UploadWorkbook)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetWorkbook)
			r.Delete("/", h.DeleteWorkbook)
			r.Get("/sheets", h.ListSheets)
			r.Get("/sheets/{sheet}/columns", h.ListColumns)
			r.Get("/sheets/{sheet}/columns/{column}/values", h.ListValues)
			r.Post("/compare", h.Compare)
			r.Post("/sweep", h.Sweep)
		})
	})

	return &WebAPI{
		router: router,
		logger: logger,
		config: config,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router for tests
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is done, then drains in-flight requests
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info("starting API server on %s", w.server.Addr)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info("API shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.config.ShutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error("graceful shutdown failed: %v", err)
			return w.server.Close()
		}
	}
	return nil
}
