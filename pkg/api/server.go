// Package api exposes the execution engine over HTTP: catalog listing in the
// provider wire formats, single and batched call execution, and the undo
// journal.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pythagonacci/trak/pkg/api/middleware"
	"github.com/pythagonacci/trak/pkg/catalog"
	"github.com/pythagonacci/trak/pkg/engine"
	"github.com/pythagonacci/trak/pkg/undo"
)

// Config defines the HTTP server settings.
type Config struct {
	Enable bool
	Addr   string
	APIKey string
}

// Server hosts the Gin engine and owns the process-wide undo journal.
type Server struct {
	router      *gin.Engine
	config      Config
	exec        *engine.Engine
	catalog     *catalog.Catalog
	workspaceID string
	journal     *undo.Tracker
	log         *slog.Logger
}

// NewServer constructs the HTTP API server.
func NewServer(cfg Config, exec *engine.Engine, cat *catalog.Catalog, workspaceID string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))

	srv := &Server{
		router:      router,
		config:      cfg,
		exec:        exec,
		catalog:     cat,
		workspaceID: workspaceID,
		journal:     undo.NewTracker(log),
		log:         log,
	}

	srv.setupRoutes()

	return srv
}

// Engine returns the underlying Gin engine (for http.Server).
func (s *Server) Engine() *gin.Engine {
	return s.router
}

// Addr returns the configured address.
func (s *Server) Addr() string {
	return s.config.Addr
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{Addr: s.config.Addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Shutdown(context.Background())
	}()

	s.log.Info("http api listening", "addr", s.config.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
