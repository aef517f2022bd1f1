package sdmx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "REF_AREA,INDICATOR,TIME_PERIOD,OBS_VALUE\n"

func newTestClient(t *testing.T, serverURL string, mutate func(*Config)) ClientInterface {
	t.Helper()

	cfg := &Config{
		BaseURL:     serverURL,
		Timeout:     2 * time.Second,
		BackoffBase: time.Millisecond,
	}
	if mutate != nil {
		mutate(cfg)
	}

	c, err := NewClient(logrus.New(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop() })

	return c
}

func testSpec() *QuerySpec {
	return &QuerySpec{Indicator: "CME_MRY0T4"}
}

func TestFetchSuccessWithRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Equal(t, "id", r.URL.Query().Get("labels"))
		fmt.Fprint(w, csvHeader+"KEN,CME_MRY0T4,2020,41.4\n")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "CME", outcome.Dataflow)
	require.NotNil(t, outcome.Table)
	require.Len(t, outcome.Table.Rows, 1)
	assert.Equal(t, "41.4", outcome.Table.Rows[0]["OBS_VALUE"])
}

func TestFetchEmptySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, csvHeader)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusEmpty, outcome.Status)
}

func TestFetchNotFoundAdvancesWithoutRetry(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusNotFound, outcome.Status)
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")
}

func TestFetchBadRequestIsFatalNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "semantic error: invalid key")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusFatal, outcome.Status)
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, ErrMalformedQuery)
	assert.Contains(t, outcome.Err.Error(), "semantic error")
	assert.Equal(t, int32(1), calls.Load(), "400 must not be retried")
}

func TestFetchTransientRetriedThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, csvHeader+"KEN,CME_MRY0T4,2020,41.4\n")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchTransientExhausted(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.MaxRetries = 2 })
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusTransient, outcome.Status)
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, ErrUpstreamUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestFetchPaginationByTotalCount(t *testing.T) {
	pages := map[string]string{
		"":  csvHeader + "KEN,CME_MRY0T4,2019,42.9\nKEN,CME_MRY0T4,2020,41.4\n",
		"2": csvHeader + "UGA,CME_MRY0T4,2019,44.7\n",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Count", "3")
		fmt.Fprint(w, pages[r.URL.Query().Get("offset")])
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.PageSize = 2 })
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusSuccess, outcome.Status)
	require.Len(t, outcome.Table.Rows, 3)
	assert.Equal(t, "UGA", outcome.Table.Rows[2]["REF_AREA"])
}

func TestFetchPaginationDuplicatePageGuard(t *testing.T) {
	// Upstream defect: offset is ignored and every page repeats the full
	// result set. The duplicate-page guard must terminate the walk.
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, csvHeader+"KEN,CME_MRY0T4,2019,42.9\nKEN,CME_MRY0T4,2020,41.4\n")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.PageSize = 2 })
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Len(t, outcome.Table.Rows, 2, "duplicate page must not be appended")
	assert.Equal(t, int32(2), calls.Load(), "walk must stop after detecting the duplicate")
}

func TestFetchPaginationOverflowIsFatal(t *testing.T) {
	// Every page is full and distinct with no advertised total; the hard
	// ceiling must surface as an explicit error, never silent truncation.
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, csvHeader+"KEN,CME_MRY0T4,%d,41.4\nUGA,CME_MRY0T4,%d,43.0\n", 1900+n, 1900+n)
		_ = r
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.PageSize = 2
		cfg.MaxPages = 5
	})
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusFatal, outcome.Status)
	assert.ErrorIs(t, outcome.Err, ErrPaginationOverflow)
	assert.Equal(t, int32(5), calls.Load())
}

func TestFetchContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := newTestClient(t, server.URL, nil)

	start := time.Now()
	outcome := c.Fetch(ctx, cmeSchema(), testSpec())

	assert.Equal(t, StatusFatal, outcome.Status)
	require.Error(t, outcome.Err)
	assert.Less(t, time.Since(start), time.Second, "cancellation must not wait for the timeout")
}

func TestFetchConnectionErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // connection refused from here on

	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.MaxRetries = 1 })
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusTransient, outcome.Status)
	require.Error(t, outcome.Err)
}

func TestFetchTotalCountHeaderParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Total-Count", strconv.Itoa(1))
		fmt.Fprint(w, csvHeader+"KEN,CME_MRY0T4,2020,41.4\n")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.PageSize = 1 })
	outcome := c.Fetch(context.Background(), cmeSchema(), testSpec())

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Len(t, outcome.Table.Rows, 1)
}
