package ui

import (
	"qastats/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	// Multipart overhead on top of the file itself
	s.router.Use(middleware.MaxBodySize(s.config.Data.MaxUploadBytes() + 1<<20))
}
