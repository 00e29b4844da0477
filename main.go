package main

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/api"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/config"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/metrics"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/services"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "soundcanvas-api@" + releaseVersion, // Use embedded release version
			EnableTracing:    true,                                // Enable tracing for spans
			TracesSampleRate: 1.0,                                 // 100% sampling for now, adjust based on volume
			EnableLogs:       true,                                // Enable Sentry Logs feature
			Debug:            !cfg.IsProduction(),                 // Enable debug in non-prod
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	// CloudWatch is a no-op outside production
	cloudWatch, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to initialize CloudWatch metrics:", err)
	}
	recorder := metrics.Multi{metrics.NewSentryMetrics(), cloudWatch, metrics.NewCounters()}

	svc := services.NewGenerationService(cfg, genre.NewCatalog(), recorder)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(cfg, svc, recorder, GetVersion())

	log.Printf("🚀 Starting server on port %s (output: %s, auth: %s)", cfg.Port, cfg.OutputDir, cfg.AuthMode)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
		"x-user-id":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
