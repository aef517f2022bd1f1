// Package metadata loads and serves the indicator/dataflow metadata tables
// that drive dataflow resolution.
package metadata

import (
	"strings"
	"time"
)

// Tier classifies an indicator's data-availability confidence, derived at
// metadata sync time.
type Tier string

// Indicator tiers
const (
	TierVerified Tier = "verified"
	TierLimited  Tier = "limited"
	TierNoData   Tier = "nodata"
	TierOrphan   Tier = "orphan"
)

// UniversalDataflow is the global catch-all dataflow every candidate list
// terminates in.
const UniversalDataflow = "GLOBAL_DATAFLOW"

// IndicatorEntry describes a single indicator from the synced codelist
type IndicatorEntry struct {
	Code            string   `yaml:"-"`
	Name            string   `yaml:"name"`
	Dataflows       []string `yaml:"dataflows,omitempty"`
	Tier            Tier     `yaml:"tier"`
	Disaggregations []string `yaml:"disaggregations,omitempty"`
}

// DataflowSchema describes a dataflow's positional dimension layout
type DataflowSchema struct {
	ID         string   `yaml:"-"`
	Agency     string   `yaml:"agency"`
	Version    string   `yaml:"version"`
	Dimensions []string `yaml:"dimensions"`
	// DisaggregationsWithTotals lists dimensions that carry a "_T" aggregate
	// code; unconstrained queries default to it.
	DisaggregationsWithTotals []string `yaml:"totals,omitempty"`
}

// HasDimension reports whether the dataflow carries the named dimension
func (s *DataflowSchema) HasDimension(name string) bool {
	for _, d := range s.Dimensions {
		if d == name {
			return true
		}
	}

	return false
}

// SupportsTotal reports whether the named dimension carries a "_T" code
func (s *DataflowSchema) SupportsTotal(name string) bool {
	for _, d := range s.DisaggregationsWithTotals {
		if d == name {
			return true
		}
	}

	return false
}

// Snapshot is one immutable load of the metadata tables. Reload replaces the
// whole snapshot; readers never observe a partial update.
type Snapshot struct {
	Version     int                       `yaml:"version"`
	GeneratedAt time.Time                 `yaml:"generated"`
	Indicators  map[string]IndicatorEntry `yaml:"indicators"`
	Fallbacks   map[string][]string       `yaml:"fallbacks"`
	Dataflows   map[string]DataflowSchema `yaml:"dataflows"`
}

// Prefix extracts the fallback-table key from an indicator code: the leading
// run of letters before the first underscore or non-alphabetic boundary. This
// must match the convention the fallback tables were generated with.
func Prefix(code string) string {
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == '_' || !isAlpha(c) {
			return strings.ToUpper(code[:i])
		}
	}

	return strings.ToUpper(code)
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
