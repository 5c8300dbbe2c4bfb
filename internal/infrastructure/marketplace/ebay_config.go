package marketplace

import "errors"

// EbayConfig holds configuration for the eBay Sell API integration
type EbayConfig struct {
	// APIKey is the OAuth access token used as bearer credential
	APIKey string
	// APISecret is the client secret, kept for token refresh
	APISecret string
	// BaseURL is the base URL for the eBay API (production or sandbox)
	BaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// EbayProductionAPIURL is the production API endpoint
	EbayProductionAPIURL = "https://api.ebay.com/sell"
	// EbaySandboxAPIURL is the sandbox API endpoint
	EbaySandboxAPIURL = "https://api.sandbox.ebay.com/sell"
)

var (
	ErrEbayConfigMissingAPIKey = errors.New("ebay: api key is required")
)

// NewEbayConfig creates a new eBay configuration with production defaults
func NewEbayConfig(apiKey, apiSecret string) *EbayConfig {
	return &EbayConfig{
		APIKey:         apiKey,
		APISecret:      apiSecret,
		BaseURL:        EbayProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 10,
	}
}

// NewSandboxEbayConfig creates a new eBay configuration for the sandbox environment
func NewSandboxEbayConfig(apiKey, apiSecret string) *EbayConfig {
	return &EbayConfig{
		APIKey:         apiKey,
		APISecret:      apiSecret,
		BaseURL:        EbaySandboxAPIURL,
		IsSandbox:      true,
		TimeoutSeconds: 10,
	}
}

// Validate validates the eBay configuration and fills in defaults
func (c *EbayConfig) Validate() error {
	if c.APIKey == "" {
		return ErrEbayConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		if c.IsSandbox {
			c.BaseURL = EbaySandboxAPIURL
		} else {
			c.BaseURL = EbayProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}
