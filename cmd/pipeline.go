package cmd

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/unicef-drp/unicefdata/pkg/cache"
	"github.com/unicef-drp/unicefdata/pkg/fetcher"
	"github.com/unicef-drp/unicefdata/pkg/metadata"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// pipeline bundles the wired services shared by the CLI commands
type pipeline struct {
	Store   *metadata.Store
	Fetcher fetcher.Service

	redisClient *redis.Client
}

// buildPipeline wires the metadata store, SDMX client, optional result
// cache and the fetcher service from a loaded configuration
func buildPipeline(config *Config, log *logrus.Logger) (*pipeline, error) {
	store := metadata.NewStore(log, &config.Metadata)

	client, err := sdmx.NewClient(log, &config.SDMX)
	if err != nil {
		return nil, err
	}

	var (
		redisClient *redis.Client
		results     *cache.ResultCache
	)

	if config.Cache.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr: config.Cache.Address,
		})
		results = cache.New(redisClient, &config.Cache)
	}

	fetcherService := fetcher.NewService(log, &config.Fetcher, store, client, results)

	return &pipeline{
		Store:       store,
		Fetcher:     fetcherService,
		redisClient: redisClient,
	}, nil
}

// Close releases the pipeline's HTTP and Redis connections
func (p *pipeline) Close() error {
	err := p.Fetcher.Stop()

	if p.redisClient != nil {
		if closeErr := p.redisClient.Close(); err == nil {
			err = closeErr
		}
	}

	return err
}
