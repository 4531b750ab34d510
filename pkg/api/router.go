package api

import (
	"github.com/pythagonacci/trak/pkg/api/handler"
	"github.com/pythagonacci/trak/pkg/api/middleware"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health (no auth required)
	s.router.GET("/health", handler.Health)
	s.router.GET("/healthz", handler.Health)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.Auth(s.config.APIKey))

	toolsHandler := handler.NewToolsHandler(s.catalog)
	v1.GET("/tools", toolsHandler.List)

	execHandler := handler.NewExecuteHandler(s.exec, s.workspaceID, s.journal, s.log)
	v1.POST("/execute", execHandler.Execute)
	v1.POST("/execute/batch", execHandler.Batch)
	v1.POST("/undo", execHandler.Undo)
}
