package fetcher

import (
	"context"
	"sync"

	"github.com/unicef-drp/unicefdata/pkg/normalizer"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// BatchResult pairs one indicator's outcome with its query
type BatchResult struct {
	Indicator string
	Table     *normalizer.Table
	Err       error
}

// FetchIndicators runs independent fallback walks for a batch of indicators
// with bounded parallelism. Results come back in input order; candidates
// within each indicator are still tried strictly in sequence.
func (s *service) FetchIndicators(ctx context.Context, specs []*sdmx.QuerySpec, level normalizer.Level) []BatchResult {
	results := make([]BatchResult, len(specs))

	sem := make(chan struct{}, s.config.Parallelism)

	var wg sync.WaitGroup

	for i, spec := range specs {
		wg.Add(1)

		go func(i int, spec *sdmx.QuerySpec) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			table, err := s.FetchIndicator(ctx, spec, level)
			results[i] = BatchResult{Indicator: spec.Indicator, Table: table, Err: err}
		}(i, spec)
	}

	wg.Wait()

	return results
}
