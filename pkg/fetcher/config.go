// Package fetcher orchestrates dataflow resolution, fetching with fallback
// and normalization into one client-facing service.
package fetcher

import (
	"time"

	"github.com/unicef-drp/unicefdata/pkg/normalizer"
)

// Config contains fallback controller settings
type Config struct {
	// AggregateTimeout bounds one whole logical call including every
	// fallback candidate and retry. Zero keeps the reference behavior of
	// per-attempt timeouts only.
	AggregateTimeout time.Duration `yaml:"aggregateTimeout"`
	// Parallelism bounds concurrent indicators in batch fetches
	Parallelism int `yaml:"parallelism"`
	// DefaultLevel is the schema level used when the caller passes none
	DefaultLevel normalizer.Level `yaml:"defaultLevel"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.SetDefaults()

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.Parallelism <= 0 {
		c.Parallelism = 4
	}

	if !c.DefaultLevel.Valid() {
		c.DefaultLevel = normalizer.LevelStandard
	}
}
