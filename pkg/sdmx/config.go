// Package sdmx implements the HTTP fetch executor against the UNICEF SDMX
// REST API.
package sdmx

import (
	"time"
)

// DefaultBaseURL is the public UNICEF SDMX REST endpoint
const DefaultBaseURL = "https://sdmx.data.unicef.org/ws/public/sdmxapi/rest"

// Config contains SDMX client settings
type Config struct {
	BaseURL string `yaml:"baseUrl"`
	// Timeout applies per HTTP attempt, not per logical call
	Timeout time.Duration `yaml:"timeout"`
	// MaxRetries bounds retries of transient failures per page request
	MaxRetries int `yaml:"maxRetries"`
	// BackoffBase is the first retry delay; it doubles per attempt
	BackoffBase time.Duration `yaml:"backoffBase"`
	// PageSize is the row count requested per page
	PageSize int `yaml:"pageSize"`
	// MaxPages is the hard pagination ceiling, surfaced as a fatal error
	MaxPages  int           `yaml:"maxPages"`
	UserAgent string        `yaml:"userAgent"`
	Debug     bool          `yaml:"debug"`
	KeepAlive time.Duration `yaml:"keepAlive"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.SetDefaults()

	if c.BaseURL == "" {
		return ErrBaseURLRequired
	}

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}

	if c.BackoffBase == 0 {
		c.BackoffBase = time.Second
	}

	if c.PageSize == 0 {
		c.PageSize = 100000
	}

	if c.MaxPages == 0 {
		c.MaxPages = 500
	}

	if c.UserAgent == "" {
		c.UserAgent = "unicefdata-go"
	}

	if c.KeepAlive == 0 {
		c.KeepAlive = 30 * time.Second
	}
}
