package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/api/handlers"
	"camdetect-ui/internal/config"
	"camdetect-ui/internal/services"
)

type Server struct {
	config    *config.Config
	container *services.ServiceContainer
	router    *gin.Engine
	server    *http.Server

	healthHandler *handlers.HealthHandler
	cameraHandler *handlers.CameraHandler
	systemHandler *handlers.SystemHandler
}

// NewServer builds the console server around an already wired container.
// The container's shell should have been built with delete links, see
// services.WithDeleteActions.
func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	s := &Server{
		config:        cfg,
		container:     container,
		router:        router,
		healthHandler: handlers.NewHealthHandler(cfg.ConsoleID, cfg.Version, cfg.BackendURL, container.DetectorSvc),
		cameraHandler: handlers.NewCameraHandler(container.Shell, container.DetectorSvc, cfg.ConsoleID),
		systemHandler: handlers.NewSystemHandler(cfg.ConsoleID),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.router.SetHTMLTemplate(handlers.PageTemplates())

	s.setupMiddleware()

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    s.config.ServerAddress(),
		Handler: s.router,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	log.Info().
		Str("address", s.server.Addr).
		Str("backend", s.config.BackendURL).
		Msg("Starting camera console")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping camera console")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.container.Shutdown(ctx)
}
