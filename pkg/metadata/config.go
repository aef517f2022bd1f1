package metadata

import "time"

// Config contains metadata store settings
type Config struct {
	// Path to the synced metadata tables file
	Path string `yaml:"path"`
	// MaxAge before the snapshot is considered stale (warning only)
	MaxAge time.Duration `yaml:"maxAge"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.SetDefaults()

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "metadata/indicators.yaml"
	}

	if c.MaxAge == 0 {
		c.MaxAge = 30 * 24 * time.Hour
	}
}
