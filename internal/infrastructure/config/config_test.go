package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SHOPTRACK_APP_NAME":                 os.Getenv("SHOPTRACK_APP_NAME"),
		"SHOPTRACK_APP_ENV":                  os.Getenv("SHOPTRACK_APP_ENV"),
		"SHOPTRACK_APP_PORT":                 os.Getenv("SHOPTRACK_APP_PORT"),
		"SHOPTRACK_FULFILLMENT_API_KEY":      os.Getenv("SHOPTRACK_FULFILLMENT_API_KEY"),
		"SHOPTRACK_FULFILLMENT_API_SECRET":   os.Getenv("SHOPTRACK_FULFILLMENT_API_SECRET"),
		"SHOPTRACK_TRACKING_API_KEY":         os.Getenv("SHOPTRACK_TRACKING_API_KEY"),
		"SHOPTRACK_TRACKING_POLL_ATTEMPTS":   os.Getenv("SHOPTRACK_TRACKING_POLL_ATTEMPTS"),
		"SHOPTRACK_TRACKING_POLL_DELAY":      os.Getenv("SHOPTRACK_TRACKING_POLL_DELAY"),
		"SHOPTRACK_TRACKING_MAX_CONCURRENT":  os.Getenv("SHOPTRACK_TRACKING_MAX_CONCURRENT"),
		"SHOPTRACK_HTTP_CORS_ALLOW_ORIGINS":  os.Getenv("SHOPTRACK_HTTP_CORS_ALLOW_ORIGINS"),
		"SHOPTRACK_TELEMETRY_SAMPLING_RATIO": os.Getenv("SHOPTRACK_TELEMETRY_SAMPLING_RATIO"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shoptrack-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 2, cfg.Tracking.PollAttempts)
		assert.Equal(t, 3*time.Second, cfg.Tracking.PollDelay)
		assert.Equal(t, 2, cfg.Tracking.MaxConcurrent)
		assert.Equal(t, 15, cfg.Fulfillment.TimeoutSeconds)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "no cross-origin access until configured")
	})

	t.Run("missing credentials is not a load error", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Fulfillment.Configured())
		assert.False(t, cfg.Tracking.Configured())
	})

	t.Run("loads values from environment variables with SHOPTRACK prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOPTRACK_APP_NAME", "test-app")
		os.Setenv("SHOPTRACK_APP_PORT", "9000")
		os.Setenv("SHOPTRACK_FULFILLMENT_API_KEY", "fk")
		os.Setenv("SHOPTRACK_FULFILLMENT_API_SECRET", "fs")
		os.Setenv("SHOPTRACK_TRACKING_API_KEY", "tk")
		os.Setenv("SHOPTRACK_TRACKING_POLL_ATTEMPTS", "4")
		os.Setenv("SHOPTRACK_TRACKING_POLL_DELAY", "500ms")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.True(t, cfg.Fulfillment.Configured())
		assert.True(t, cfg.Tracking.Configured())
		assert.Equal(t, 4, cfg.Tracking.PollAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.Tracking.PollDelay)
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOPTRACK_APP_ENV", "production")
		os.Setenv("SHOPTRACK_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("rejects out of range sampling ratio", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOPTRACK_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("rejects negative max_concurrent", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOPTRACK_TRACKING_MAX_CONCURRENT", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_concurrent")
	})
}
