package marketplace

import "errors"

// MercariConfig holds configuration for the Mercari merchant API integration
type MercariConfig struct {
	// AccessToken is the merchant access token
	AccessToken string
	// BaseURL is the base URL for the Mercari API
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// MercariProductionAPIURL is the production API endpoint
const MercariProductionAPIURL = "https://api.mercari.com/v1"

var (
	ErrMercariConfigMissingToken = errors.New("mercari: access token is required")
)

// NewMercariConfig creates a new Mercari configuration with defaults
func NewMercariConfig(accessToken string) *MercariConfig {
	return &MercariConfig{
		AccessToken:    accessToken,
		BaseURL:        MercariProductionAPIURL,
		TimeoutSeconds: 10,
	}
}

// Validate validates the Mercari configuration and fills in defaults
func (c *MercariConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrMercariConfigMissingToken
	}
	if c.BaseURL == "" {
		c.BaseURL = MercariProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}
