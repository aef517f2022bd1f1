package sdmx

// Status classifies the result of a fetch attempt against one dataflow
type Status int

// Fetch outcome statuses
const (
	// StatusSuccess: 2xx with at least one data row
	StatusSuccess Status = iota
	// StatusEmpty: valid query, zero matching rows
	StatusEmpty
	// StatusNotFound: the dataflow/indicator combination is invalid upstream
	StatusNotFound
	// StatusTransient: retries exhausted on 5xx/timeout/connection errors
	StatusTransient
	// StatusFatal: client-side construction bug or aborted call; never
	// retried, never advanced past
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusNotFound:
		return "not_found"
	case StatusTransient:
		return "transient"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// RawRecord is one source row keyed by source column name
type RawRecord map[string]string

// RawTable is the parsed tabular response before normalization. Columns
// preserves the source header order.
type RawTable struct {
	Columns []string
	Rows    []RawRecord
}

// Outcome is the classified result of fetching one dataflow. It is returned
// by value; the fallback controller branches on Status rather than catching
// typed errors.
type Outcome struct {
	Status   Status
	Dataflow string
	Table    *RawTable
	Err      error
}

func successOutcome(dataflow string, table *RawTable) Outcome {
	if len(table.Rows) == 0 {
		return Outcome{Status: StatusEmpty, Dataflow: dataflow, Table: table}
	}

	return Outcome{Status: StatusSuccess, Dataflow: dataflow, Table: table}
}

func notFoundOutcome(dataflow string) Outcome {
	return Outcome{Status: StatusNotFound, Dataflow: dataflow}
}

func transientOutcome(dataflow string, err error) Outcome {
	return Outcome{Status: StatusTransient, Dataflow: dataflow, Err: err}
}

func fatalOutcome(dataflow string, err error) Outcome {
	return Outcome{Status: StatusFatal, Dataflow: dataflow, Err: err}
}
