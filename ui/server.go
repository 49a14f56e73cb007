package ui

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"qastats/app"
	"qastats/internal"
	"qastats/internal/config"
	"qastats/internal/workbook"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTML front end for loading files and comparing groups
type Server struct {
	router      *gin.Engine
	templates   *template.Template
	store       *workbook.Store
	comparisons *app.ComparisonService
	config      *config.Config
	logger      *internal.Logger
}

// NewServer wires the routes and parses the embedded templates
func NewServer(cfg *config.Config, store *workbook.Store, comparisons *app.ComparisonService, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:      gin.New(),
		templates:   tmpl,
		store:       store,
		comparisons: comparisons,
		config:      cfg,
		logger:      logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/workbooks", s.handleUpload)
	s.router.GET("/workbooks/:id", s.handleWorkbook)
	s.router.GET("/workbooks/:id/groups", s.handleGroups)
	s.router.POST("/workbooks/:id/compare", s.handleCompare)

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting QA Statistics UI on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
