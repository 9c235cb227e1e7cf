package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.GET("/", s.cameraHandler.Page)
	s.router.GET("/health", s.healthHandler.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.container.Metrics, promhttp.HandlerOpts{})))

	cameras := s.router.Group("/cameras")
	{
		cameras.POST("", s.cameraHandler.AddCamera)
		cameras.POST("/:id/delete/request", s.cameraHandler.RequestDelete)
		cameras.POST("/:id/delete", s.cameraHandler.ResolveDelete)
	}

	s.router.POST("/notice/dismiss", s.cameraHandler.DismissNotice)
	s.router.POST("/reload", s.cameraHandler.Reload)

	api := s.router.Group("/api")
	{
		api.GET("/state", s.cameraHandler.State)
		api.GET("/info", s.healthHandler.ConsoleInfo)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}
}
