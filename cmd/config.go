package cmd

import (
	"os"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/unicef-drp/unicefdata/pkg/api"
	"github.com/unicef-drp/unicefdata/pkg/cache"
	"github.com/unicef-drp/unicefdata/pkg/fetcher"
	"github.com/unicef-drp/unicefdata/pkg/metadata"
	"github.com/unicef-drp/unicefdata/pkg/scheduler"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// Config is the full client configuration
type Config struct {
	// Logging level
	Logging string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`

	// MetricsAddr exposes Prometheus metrics when set (serve mode)
	MetricsAddr string `yaml:"metricsAddr" default:""`

	Metadata  metadata.Config  `yaml:"metadata"`
	SDMX      sdmx.Config      `yaml:"sdmx"`
	Fetcher   fetcher.Config   `yaml:"fetcher"`
	Cache     cache.Config     `yaml:"cache"`
	API       api.Config       `yaml:"api"`
	Scheduler scheduler.Config `yaml:"scheduler"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return err
	}

	if err := c.SDMX.Validate(); err != nil {
		return err
	}

	if err := c.Fetcher.Validate(); err != nil {
		return err
	}

	if err := c.Cache.Validate(); err != nil {
		return err
	}

	if err := c.API.Validate(); err != nil {
		return err
	}

	return c.Scheduler.Validate()
}

// LoadConfig loads configuration from a YAML file. A missing file is not an
// error: every setting has a working default.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "./config.yaml"
	}

	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, config.Validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, config.Validate()
}

func configuredLogger(config *Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(config.Logging)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return log, nil
}
