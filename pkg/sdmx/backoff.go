package sdmx

import "time"

// Backoff is a pure exponential backoff schedule. It only computes delays;
// the caller decides how to wait, which keeps retry logic testable without
// real time passing.
type Backoff struct {
	Base time.Duration
}

// Delay returns the wait before retry number attempt (0-based): Base doubled
// per attempt, so 1s/2s/4s with a 1s base.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	return b.Base << uint(attempt)
}
