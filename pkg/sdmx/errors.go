package sdmx

import "errors"

// Define static errors
var (
	ErrBaseURLRequired     = errors.New("SDMX base URL is required")
	ErrPaginationOverflow  = errors.New("pagination page ceiling reached")
	ErrMalformedQuery      = errors.New("malformed SDMX query")
	ErrUpstreamUnavailable = errors.New("SDMX API unavailable")
)
