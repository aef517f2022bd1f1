package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unicef-drp/unicefdata/pkg/cache"
	"github.com/unicef-drp/unicefdata/pkg/metadata"
	"github.com/unicef-drp/unicefdata/pkg/normalizer"
	"github.com/unicef-drp/unicefdata/pkg/observability"
	"github.com/unicef-drp/unicefdata/pkg/resolver"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// Service is the client-facing fetch pipeline
type Service interface {
	// FetchIndicator resolves, fetches with fallback and normalizes one
	// indicator
	FetchIndicator(ctx context.Context, spec *sdmx.QuerySpec, level normalizer.Level) (*normalizer.Table, error)
	// FetchIndicators fetches a batch of indicators; each indicator's
	// fallback walk is independent and they may run in parallel
	FetchIndicators(ctx context.Context, specs []*sdmx.QuerySpec, level normalizer.Level) []BatchResult
	// Stop releases the underlying HTTP client
	Stop() error
}

// service wires the resolver, the SDMX client and the normalizer together
type service struct {
	log      logrus.FieldLogger
	config   *Config
	store    *metadata.Store
	resolver *resolver.Resolver
	client   sdmx.ClientInterface
	results  *cache.ResultCache
}

// NewService creates the fetch pipeline service. The result cache may be nil
// to disable caching.
func NewService(logger logrus.FieldLogger, cfg *Config, store *metadata.Store, client sdmx.ClientInterface, results *cache.ResultCache) Service {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.SetDefaults()

	return &service{
		log:      logger.WithField("service", "fetcher"),
		config:   cfg,
		store:    store,
		resolver: resolver.New(store),
		client:   client,
		results:  results,
	}
}

func (s *service) FetchIndicator(ctx context.Context, spec *sdmx.QuerySpec, level normalizer.Level) (*normalizer.Table, error) {
	if !level.Valid() {
		level = s.config.DefaultLevel
	}

	if cached := s.cachedResult(ctx, spec, level); cached != nil {
		return cached, nil
	}

	if s.config.AggregateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AggregateTimeout)
		defer cancel()
	}

	table, err := s.fetchWithFallback(ctx, spec, level)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.results.Set(ctx, spec, table); cacheErr != nil {
		s.log.WithError(cacheErr).Debug("Failed to store result in cache")
	}

	return table, nil
}

// fetchWithFallback walks the resolved candidates strictly in order. The
// first success wins and no merging happens across dataflows; the list is
// walked exactly once. Fatal outcomes abort immediately, everything else
// advances to the next candidate.
func (s *service) fetchWithFallback(ctx context.Context, spec *sdmx.QuerySpec, level normalizer.Level) (*normalizer.Table, error) {
	candidates := s.resolver.Resolve(spec.Indicator)

	log := s.log.WithField("indicator", spec.Indicator)
	log.WithField("candidates", candidates).Debug("Resolved dataflow candidates")

	attempts := make([]Attempt, 0, len(candidates))

	for i, dataflowID := range candidates {
		schema, ok := s.store.Dataflow(dataflowID)
		if !ok {
			// Metadata names a dataflow we have no schema for; treat it
			// like an upstream not-found and keep walking
			log.WithField("dataflow", dataflowID).Warn("No schema for candidate dataflow, skipping")
			attempts = append(attempts, Attempt{Dataflow: dataflowID, Status: sdmx.StatusNotFound})

			continue
		}

		started := time.Now()
		outcome := s.client.Fetch(ctx, &schema, spec)
		observability.RecordFetchOutcome(dataflowID, outcome.Status.String(), time.Since(started).Seconds())

		switch outcome.Status {
		case sdmx.StatusSuccess:
			log.WithFields(logrus.Fields{
				"dataflow": dataflowID,
				"rows":     len(outcome.Table.Rows),
				"position": i + 1,
			}).Debug("Dataflow answered")

			observability.RecordFallbackDepth("success", i+1)

			return normalizer.Normalize(outcome.Table, &schema, spec, level), nil

		case sdmx.StatusEmpty, sdmx.StatusNotFound, sdmx.StatusTransient:
			if outcome.Status == sdmx.StatusTransient {
				log.WithError(outcome.Err).WithField("dataflow", dataflowID).
					Warn("Retries exhausted, advancing to next candidate")
			}

			attempts = append(attempts, Attempt{Dataflow: dataflowID, Status: outcome.Status, Err: outcome.Err})

		case sdmx.StatusFatal:
			observability.RecordFallbackDepth("fatal", i+1)

			return nil, fmt.Errorf("%w for %s on dataflow %s: %v",
				ErrFatalQuery, spec.Indicator, dataflowID, outcome.Err)
		}
	}

	observability.RecordFallbackDepth("exhausted", len(candidates))

	return nil, &ExhaustedError{Indicator: spec.Indicator, Attempts: attempts}
}

func (s *service) cachedResult(ctx context.Context, spec *sdmx.QuerySpec, level normalizer.Level) *normalizer.Table {
	cached, err := s.results.Get(ctx, spec, level)
	if err != nil {
		observability.RecordCacheError()
		s.log.WithError(err).Debug("Result cache lookup failed")

		return nil
	}

	if cached == nil {
		observability.RecordCacheMiss()

		return nil
	}

	observability.RecordCacheHit()

	return cached
}

func (s *service) Stop() error {
	return s.client.Stop()
}

// Verify interface compliance at compile time
var _ Service = (*service)(nil)
