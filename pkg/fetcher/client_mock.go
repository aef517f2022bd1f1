package fetcher

import (
	"context"
	"sync"

	"github.com/unicef-drp/unicefdata/pkg/metadata"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// MockClient is a mock sdmx.ClientInterface for testing the controller
type MockClient struct {
	mu sync.Mutex

	// FetchFunc controls the outcome per call
	FetchFunc func(ctx context.Context, schema *metadata.DataflowSchema, spec *sdmx.QuerySpec) sdmx.Outcome

	// FetchCalls records the dataflow IDs fetched, in order
	FetchCalls []string
	Stopped    bool
}

// Fetch implements sdmx.ClientInterface
func (m *MockClient) Fetch(ctx context.Context, schema *metadata.DataflowSchema, spec *sdmx.QuerySpec) sdmx.Outcome {
	m.mu.Lock()
	m.FetchCalls = append(m.FetchCalls, schema.ID)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, schema, spec)
	}

	return sdmx.Outcome{Status: sdmx.StatusEmpty, Dataflow: schema.ID}
}

// Stop implements sdmx.ClientInterface
func (m *MockClient) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stopped = true

	return nil
}

// Calls returns a copy of the recorded fetch order
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.FetchCalls...)
}

// Verify interface compliance at compile time
var _ sdmx.ClientInterface = (*MockClient)(nil)
