package tracker

import (
	"errors"
	"time"
)

// Config holds configuration for the tracking aggregator API integration.
type Config struct {
	// APIKey is the aggregator API token, sent on every request
	APIKey string
	// APIBaseURL is the base URL for the aggregator API
	APIBaseURL string
	// PollAttempts is how many times to re-query after registering a number
	PollAttempts int
	// PollDelay is the wait between poll attempts
	PollDelay time.Duration
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// DefaultAPIBaseURL is the production aggregator API endpoint.
const DefaultAPIBaseURL = "https://api.17track.net/track/v2.2"

// ErrConfigMissingAPIKey indicates the aggregator token is absent.
var ErrConfigMissingAPIKey = errors.New("tracker: API key is required")

// NewConfig creates a tracker configuration with defaults.
func NewConfig(apiKey string) *Config {
	return &Config{
		APIKey:         apiKey,
		APIBaseURL:     DefaultAPIBaseURL,
		PollAttempts:   2,
		PollDelay:      3 * time.Second,
		TimeoutSeconds: 15,
	}
}

// Validate validates the tracker configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = 2
	}
	if c.PollDelay <= 0 {
		c.PollDelay = 3 * time.Second
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	return nil
}
