package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/shoptrack/backend/internal/infrastructure/logger"
	"github.com/shoptrack/backend/internal/infrastructure/telemetry"
	"github.com/shoptrack/backend/internal/interfaces/http/dto"
	"github.com/shoptrack/backend/internal/interfaces/http/middleware"
)

// EngineConfig carries everything needed to assemble the gin engine.
type EngineConfig struct {
	Mode        string
	ServiceName string
	MaxBodySize int64
	CORS        middleware.CORSConfig
	Logger      *zap.Logger

	// MeterProvider may be nil; HTTP metrics are then skipped.
	MeterProvider    *telemetry.MeterProvider
	TelemetryEnabled bool
}

// NewEngine builds the gin engine with the full middleware stack. Handler
// routes are registered separately through Router.
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.TelemetryEnabled {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		Enabled:       cfg.TelemetryEnabled,
	}))

	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponse(
			dto.ErrCodeMethodNotAllowed,
			"Method not allowed",
			c.GetString("request_id"),
		))
	})
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrCodeNotFound,
			"Route not found",
			c.GetString("request_id"),
		))
	})

	return engine
}
