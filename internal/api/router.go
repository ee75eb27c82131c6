package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/art2music-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/art2music-api/internal/api/middleware"
	"github.com/Conceptual-Machines/art2music-api/internal/config"
	"github.com/Conceptual-Machines/art2music-api/internal/middleware"
	"github.com/Conceptual-Machines/art2music-api/internal/services"
)

// LocalAudioPath is where locally stored audio is served from.
const LocalAudioPath = "/audio"

// SetupRouter wires the HTTP API. db may be nil when persistence is
// disabled; recorders receive per-request metrics.
func SetupRouter(
	db *gorm.DB,
	cfg *config.Config,
	svc *services.CompositionService,
	version string,
	recorders ...apimiddleware.APIRecorder,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorders...))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Rendered audio, when stored on local disk
	if cfg.S3Bucket == "" && cfg.AudioDir != "" && cfg.PublicAudioBaseURL == "" {
		router.Static(LocalAudioPath, cfg.AudioDir)
	}

	// Health check
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, handlers.Features{
		Database:    svc.CanPersist(),
		AudioRender: svc.CanRender(),
		TrackSearch: svc.CanRecommend(),
		AuthMode:    cfg.AuthMode,
	})
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		compositionHandler := handlers.NewCompositionHandler(svc)
		v1.POST("/compositions", compositionHandler.Create)
		v1.GET("/compositions/:id", compositionHandler.Get)

		recommendationHandler := handlers.NewRecommendationHandler(svc)
		v1.POST("/recommendations", recommendationHandler.Create)
	}

	return router
}

// authMiddleware selects the auth strategy for AUTH_MODE
func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch {
	case cfg.IsGatewayMode():
		return apimiddleware.GatewayAuth()
	case cfg.IsJWTMode():
		return middleware.JWTAuth(cfg.JWTSecret)
	default:
		return apimiddleware.NoAuth()
	}
}
