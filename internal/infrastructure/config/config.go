package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Fulfillment FulfillmentConfig
	Tracking    TrackingConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// FulfillmentConfig holds fulfillment platform API settings
type FulfillmentConfig struct {
	APIKey         string
	APISecret      string
	APIBaseURL     string
	TimeoutSeconds int
}

// Configured reports whether fulfillment credentials are present. Absence is
// a degraded state, not a load error; the handler reports it per request.
func (f FulfillmentConfig) Configured() bool {
	return f.APIKey != "" && f.APISecret != ""
}

// TrackingConfig holds tracking aggregator API settings
type TrackingConfig struct {
	APIKey         string
	APIBaseURL     string
	PollAttempts   int
	PollDelay      time.Duration
	TimeoutSeconds int
	// MaxConcurrent caps simultaneous per-shipment verifications
	MaxConcurrent int
}

// Configured reports whether the aggregator token is present. Without it the
// service degrades to platform-only status resolution.
func (t TrackingConfig) Configured() bool {
	return t.APIKey != ""
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOPTRACK_ prefix (e.g., SHOPTRACK_FULFILLMENT_APIKEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHOPTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Fulfillment: FulfillmentConfig{
			APIKey:         v.GetString("fulfillment.api_key"),
			APISecret:      v.GetString("fulfillment.api_secret"),
			APIBaseURL:     v.GetString("fulfillment.api_base_url"),
			TimeoutSeconds: v.GetInt("fulfillment.timeout_seconds"),
		},
		Tracking: TrackingConfig{
			APIKey:         v.GetString("tracking.api_key"),
			APIBaseURL:     v.GetString("tracking.api_base_url"),
			PollAttempts:   v.GetInt("tracking.poll_attempts"),
			PollDelay:      v.GetDuration("tracking.poll_delay"),
			TimeoutSeconds: v.GetInt("tracking.timeout_seconds"),
			MaxConcurrent:  v.GetInt("tracking.max_concurrent"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shoptrack-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Verification polling can hold a request open for most of a minute.
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 64 << 10 // 64KB, lookup requests are tiny
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly
	// configured with the storefront's origins.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Fulfillment.TimeoutSeconds == 0 {
		cfg.Fulfillment.TimeoutSeconds = 15
	}
	if cfg.Tracking.PollAttempts == 0 {
		cfg.Tracking.PollAttempts = 2
	}
	if cfg.Tracking.PollDelay == 0 {
		cfg.Tracking.PollDelay = 3 * time.Second
	}
	if cfg.Tracking.TimeoutSeconds == 0 {
		cfg.Tracking.TimeoutSeconds = 15
	}
	if cfg.Tracking.MaxConcurrent == 0 {
		cfg.Tracking.MaxConcurrent = 2
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "shoptrack-backend"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Tracking.MaxConcurrent < 1 {
		return fmt.Errorf("tracking.max_concurrent must be at least 1")
	}

	return nil
}
