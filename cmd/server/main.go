package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoptrack/backend/internal/application/orderstatus"
	"github.com/shoptrack/backend/internal/domain/tracking"
	"github.com/shoptrack/backend/internal/infrastructure/config"
	"github.com/shoptrack/backend/internal/infrastructure/fulfillment"
	"github.com/shoptrack/backend/internal/infrastructure/logger"
	"github.com/shoptrack/backend/internal/infrastructure/telemetry"
	"github.com/shoptrack/backend/internal/infrastructure/tracker"
	"github.com/shoptrack/backend/internal/interfaces/http/handler"
	"github.com/shoptrack/backend/internal/interfaces/http/middleware"
	"github.com/shoptrack/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	zapLogger, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting shoptrack backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize telemetry providers. Both degrade to no-ops when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	var lookupMetrics *telemetry.LookupMetrics
	if meterProvider.IsEnabled() {
		lookupMetrics, err = telemetry.NewLookupMetrics(telemetry.LookupMetricsConfig{
			Meter:  meterProvider.Meter(telemetry.TracerName),
			Logger: zapLogger,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize lookup metrics", zap.Error(err))
		}
	}

	// Upstream adapters. A missing fulfillment credential is not fatal at
	// startup; lookups report the configuration problem per request. A
	// missing aggregator token disables verification only.
	var fulfillmentGateway tracking.FulfillmentGateway
	if cfg.Fulfillment.Configured() {
		adapter, err := fulfillment.NewAdapter(&fulfillment.Config{
			APIKey:         cfg.Fulfillment.APIKey,
			APISecret:      cfg.Fulfillment.APISecret,
			APIBaseURL:     cfg.Fulfillment.APIBaseURL,
			TimeoutSeconds: cfg.Fulfillment.TimeoutSeconds,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to initialize fulfillment adapter", zap.Error(err))
		}
		fulfillmentGateway = adapter
	} else {
		zapLogger.Warn("Fulfillment API credentials not configured, lookups will fail until set")
	}

	var trackingGateway tracking.TrackingGateway
	if cfg.Tracking.Configured() {
		adapter, err := tracker.NewAdapter(&tracker.Config{
			APIKey:         cfg.Tracking.APIKey,
			APIBaseURL:     cfg.Tracking.APIBaseURL,
			PollAttempts:   cfg.Tracking.PollAttempts,
			PollDelay:      cfg.Tracking.PollDelay,
			TimeoutSeconds: cfg.Tracking.TimeoutSeconds,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to initialize tracker adapter", zap.Error(err))
		}
		trackingGateway = adapter
	} else {
		zapLogger.Warn("Tracking aggregator token not configured, verification disabled")
	}

	// Application service
	orderStatusService := orderstatus.NewService(orderstatus.ServiceConfig{
		Fulfillment:   fulfillmentGateway,
		Tracker:       trackingGateway,
		Logger:        zapLogger,
		Metrics:       lookupMetrics,
		MaxConcurrent: cfg.Tracking.MaxConcurrent,
	})

	// HTTP layer
	ginMode := gin.ReleaseMode
	if cfg.App.Env == "development" {
		ginMode = gin.DebugMode
	}

	engine := router.NewEngine(router.EngineConfig{
		Mode:        ginMode,
		ServiceName: cfg.Telemetry.ServiceName,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		Logger:           zapLogger,
		MeterProvider:    meterProvider,
		TelemetryEnabled: cfg.Telemetry.Enabled,
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			zapLogger.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	healthHandler := handler.NewHealthHandler()
	engine.GET("/health", healthHandler.Health)

	orderStatusHandler := handler.NewOrderStatusHandler(orderStatusService, zapLogger)
	orderStatusGroup := router.NewDomainGroup("orderstatus", "").
		POST("/order-status", orderStatusHandler.Lookup)

	router.NewRouter(engine).
		Register(orderStatusGroup).
		Setup()

	// Create HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down tracer provider", zap.Error(err))
	}

	zapLogger.Info("Server exited gracefully")
}
