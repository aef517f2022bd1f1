package fetcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// Fetcher-specific errors
var (
	ErrAllCandidatesFailed = errors.New("all dataflow candidates failed")
	ErrTransientExhausted  = errors.New("retries exhausted on transient failures")
	ErrFatalQuery          = errors.New("fatal query error")
)

// Attempt records one tried dataflow and how it ended
type Attempt struct {
	Dataflow string
	Status   sdmx.Status
	Err      error
}

// ExhaustedError is returned when the whole candidate list was walked
// without a success. It carries every tried dataflow in walk order; error
// text must enumerate them so failures are diagnosable from the message
// alone.
type ExhaustedError struct {
	Indicator string
	Attempts  []Attempt
}

// Tried returns the tried dataflow IDs in walk order
func (e *ExhaustedError) Tried() []string {
	tried := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		tried[i] = a.Dataflow
	}

	return tried
}

// Transient returns the dataflows whose retries were exhausted on transient
// failures, distinguishing upstream flakiness from plain missing data
func (e *ExhaustedError) Transient() []string {
	var transient []string
	for _, a := range e.Attempts {
		if a.Status == sdmx.StatusTransient {
			transient = append(transient, a.Dataflow)
		}
	}

	return transient
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("no data found for indicator %s: tried dataflows [%s]",
		e.Indicator, strings.Join(e.Tried(), ", "))

	if transient := e.Transient(); len(transient) > 0 {
		msg += fmt.Sprintf("; transient errors on [%s]", strings.Join(transient, ", "))
	}

	return msg
}

// Unwrap exposes the sentinel errors so callers can branch with errors.Is:
// every exhaustion matches ErrAllCandidatesFailed, and additionally
// ErrTransientExhausted when any candidate failed on retries rather than
// missing data.
func (e *ExhaustedError) Unwrap() []error {
	if len(e.Transient()) > 0 {
		return []error{ErrAllCandidatesFailed, ErrTransientExhausted}
	}

	return []error{ErrAllCandidatesFailed}
}
