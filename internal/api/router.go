package api

import (
	"github.com/fleetkeep/maintguard/internal/api/handlers"
	"github.com/fleetkeep/maintguard/internal/api/middleware"
	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	Config *config.Config
	Router *gin.Engine
}

func NewServer(cfg *config.Config, repo *db.Repository, handler *handlers.Handler, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	server := &Server{
		Config: cfg,
		Router: router,
	}

	server.setupRoutes(repo, handler, logger)
	return server
}

func (s *Server) setupRoutes(repo *db.Repository, handler *handlers.Handler, logger *zap.Logger) {
	// Unauthenticated surface
	s.Router.GET("/health", handlers.HealthCheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes (protected, feature-gated)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret))
	api.Use(middleware.Tenant())
	api.Use(middleware.FeatureRequired(repo, db.FeaturePredictiveMaintenance, logger))

	{
		api.GET("/alerts", handler.ListAlerts)
		api.GET("/alerts/:id", handler.GetAlert)
		api.POST("/alerts/:id/dismiss", handler.DismissAlert)
		api.GET("/analytics/summary", handler.GetAnalyticsSummary)
		api.POST("/scans", handler.TriggerScan)
	}
}
