// Package scheduler refreshes the metadata snapshot on a cron schedule.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Config contains metadata refresh scheduler settings
type Config struct {
	Enabled bool `yaml:"enabled"`
	// Schedule is a cron expression or @every duration
	Schedule string `yaml:"schedule"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.SetDefaults()

	if !c.Enabled {
		return nil
	}

	if _, err := parseSchedule(c.Schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", c.Schedule, err)
	}

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.Schedule == "" {
		c.Schedule = "@every 24h"
	}
}

func parseSchedule(schedule string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	return parser.Parse(schedule)
}
