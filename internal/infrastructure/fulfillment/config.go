package fulfillment

import "errors"

// Config holds configuration for the fulfillment platform API integration.
type Config struct {
	// APIKey is the basic-auth username issued by the fulfillment platform
	APIKey string
	// APISecret is the basic-auth password issued by the fulfillment platform
	APISecret string
	// APIBaseURL is the base URL for the fulfillment API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// DefaultAPIBaseURL is the production fulfillment API endpoint.
const DefaultAPIBaseURL = "https://ssapi.shipstation.com"

// Errors for fulfillment configuration
var (
	ErrConfigMissingAPIKey    = errors.New("fulfillment: API key is required")
	ErrConfigMissingAPISecret = errors.New("fulfillment: API secret is required")
)

// NewConfig creates a fulfillment configuration with defaults.
func NewConfig(apiKey, apiSecret string) *Config {
	return &Config{
		APIKey:         apiKey,
		APISecret:      apiSecret,
		APIBaseURL:     DefaultAPIBaseURL,
		TimeoutSeconds: 15,
	}
}

// Validate validates the fulfillment configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.APISecret == "" {
		return ErrConfigMissingAPISecret
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	return nil
}
