package sdmx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unicef-drp/unicefdata/pkg/metadata"
)

// ClientInterface defines the fetch executor contract
type ClientInterface interface {
	// Fetch retrieves all pages for one dataflow and classifies the outcome
	Fetch(ctx context.Context, schema *metadata.DataflowSchema, spec *QuerySpec) Outcome
	// Stop closes the client
	Stop() error
}

// client implements ClientInterface over the SDMX REST HTTP interface
type client struct {
	log        logrus.FieldLogger
	httpClient *http.Client
	config     *Config
	backoff    Backoff
}

// NewClient creates a new SDMX HTTP client
func NewClient(logger logrus.FieldLogger, cfg *Config) (ClientInterface, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     cfg.KeepAlive,
		DisableKeepAlives:   false,
	}

	return &client{
		log: logger.WithField("component", "sdmx-client"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   0, // per-attempt timeouts are set via request contexts
		},
		config:  cfg,
		backoff: Backoff{Base: cfg.BackoffBase},
	}, nil
}

func (c *client) Stop() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}

	return nil
}

// Fetch walks the paginated response for one dataflow. Pagination terminates
// on any of: cumulative rows reaching the advertised total, an empty page, or
// a page byte-identical to the previous one. The duplicate-page guard covers
// a known upstream defect where the offset parameter is silently ignored and
// every page repeats the full result set. Hitting the page ceiling is a fatal
// error, never a silent truncation.
func (c *client) Fetch(ctx context.Context, schema *metadata.DataflowSchema, spec *QuerySpec) Outcome {
	dataflow := schema.ID

	var (
		merged   *RawTable
		prevBody []byte
	)

	offset := 0
	total := -1

	for page := 0; ; page++ {
		if page >= c.config.MaxPages {
			return fatalOutcome(dataflow, fmt.Errorf("%w after %d pages for %s", ErrPaginationOverflow, page, spec.Indicator))
		}

		reqURL, err := buildQueryURL(c.config.BaseURL, schema, spec, offset, c.config.PageSize)
		if err != nil {
			return fatalOutcome(dataflow, err)
		}

		body, pageTotal, outcome, ok := c.fetchPage(ctx, dataflow, reqURL)
		if !ok {
			return outcome
		}

		if pageTotal >= 0 {
			total = pageTotal
		}

		if prevBody != nil && bytes.Equal(body, prevBody) {
			c.log.WithFields(logrus.Fields{
				"dataflow": dataflow,
				"page":     page,
			}).Debug("Duplicate page detected, upstream ignored pagination offset")

			break
		}
		prevBody = body

		table, err := parseTable(bytes.NewReader(body))
		if err != nil {
			return fatalOutcome(dataflow, err)
		}

		if merged == nil {
			merged = table
		} else {
			merged.Rows = append(merged.Rows, table.Rows...)
		}

		if len(table.Rows) == 0 {
			break
		}

		if total >= 0 && len(merged.Rows) >= total {
			break
		}

		// No advertised total and a short page means the result set is done
		if total < 0 && len(table.Rows) < c.config.PageSize {
			break
		}

		offset += len(table.Rows)
	}

	if merged == nil {
		merged = &RawTable{}
	}

	return successOutcome(dataflow, merged)
}

// fetchPage performs one page request with retry-and-backoff on transient
// failures. ok is true only when a 2xx body was obtained; otherwise the
// returned Outcome is final for this dataflow.
func (c *client) fetchPage(ctx context.Context, dataflow, reqURL string) (body []byte, total int, outcome Outcome, ok bool) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff.Delay(attempt - 1)

			c.log.WithFields(logrus.Fields{
				"dataflow": dataflow,
				"attempt":  attempt,
				"delay":    delay,
			}).Debug("Retrying after transient failure")

			select {
			case <-ctx.Done():
				return nil, 0, fatalOutcome(dataflow, ctx.Err()), false
			case <-time.After(delay):
			}
		}

		respBody, respTotal, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				// Caller canceled or aggregate deadline expired; do not retry
				return nil, 0, fatalOutcome(dataflow, ctx.Err()), false
			}

			lastErr = err

			continue
		}

		switch {
		case status >= 200 && status < 300:
			return respBody, respTotal, Outcome{}, true
		case status == http.StatusNotFound:
			return nil, 0, notFoundOutcome(dataflow), false
		case status == http.StatusBadRequest:
			return nil, 0, fatalOutcome(dataflow, fmt.Errorf("%w (status 400): %s", ErrMalformedQuery, truncate(respBody, 200))), false
		case status >= 500:
			lastErr = fmt.Errorf("%w (status %d)", ErrUpstreamUnavailable, status)

			continue
		default:
			// Remaining 4xx codes indicate a client-side construction bug
			return nil, 0, fatalOutcome(dataflow, fmt.Errorf("%w (status %d): %s", ErrMalformedQuery, status, truncate(respBody, 200))), false
		}
	}

	return nil, 0, transientOutcome(dataflow, lastErr), false
}

func (c *client) doRequest(ctx context.Context, reqURL string) (body []byte, total, status int, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", c.config.UserAgent)

	requestID := uuid.NewString()

	if c.config.Debug {
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"url":        reqURL,
		}).Debug("Executing SDMX query")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WithError(closeErr).Debug("Failed to close response body")
		}
	}()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read response: %w", err)
	}

	total = -1
	if header := resp.Header.Get("X-Total-Count"); header != "" {
		if parsed, parseErr := strconv.Atoi(header); parseErr == nil {
			total = parsed
		}
	}

	if c.config.Debug {
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     resp.StatusCode,
			"bytes":      len(body),
		}).Debug("SDMX response")
	}

	return body, total, resp.StatusCode, nil
}

func truncate(body []byte, limit int) string {
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}

	return string(body)
}

// Verify interface compliance at compile time
var _ ClientInterface = (*client)(nil)
