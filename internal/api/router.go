package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/soundcanvas-api/internal/api/middleware"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/config"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/metrics"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/services"
)

func SetupRouter(cfg *config.Config, svc *services.GenerationService, recorder metrics.Recorder, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking, structured logging and API metrics
	router.Use(apimiddleware.RequestTracking(recorder))

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg.OutputDir)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	genres := make([]string, 0, len(svc.Catalog().Genres()))
	for _, g := range svc.Catalog().Genres() {
		genres = append(genres, g.String())
	}
	metricsHandler := handlers.NewMetricsHandler(version, genres, cfg.AuthMode, metrics.CountersFrom(recorder))
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(apimiddleware.Auth(cfg))
	{
		genreHandler := handlers.NewGenreHandler(svc.Catalog())
		v1.GET("/genres", genreHandler.ListGenres)

		compositionHandler := handlers.NewCompositionHandler(svc)
		v1.POST("/compositions", compositionHandler.Create)
		v1.GET("/compositions/:id", compositionHandler.Get)
		v1.GET("/compositions/:id/file", compositionHandler.File)
	}

	return router
}
