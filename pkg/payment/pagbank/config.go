package pagbank

// Config represents the configuration for the PagBank API client
type Config struct {
	// Token is the PagBank bearer token for API authentication
	Token string

	// BaseURL is the PagBank API base URL (sandbox or production)
	BaseURL string

	// NotificationURL receives charge status webhooks
	NotificationURL string

	// PixExpiryMinutes is the lifetime of generated PIX QR codes
	PixExpiryMinutes int

	// BoletoDueDays is the number of days until boleto expiration
	BoletoDueDays int
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.PixExpiryMinutes <= 0 {
		return ErrInvalidRequest
	}
	if c.BoletoDueDays <= 0 {
		return ErrInvalidRequest
	}
	return nil
}
