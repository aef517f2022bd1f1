// Package resolver maps indicator codes to ordered dataflow candidate lists.
package resolver

import (
	"github.com/unicef-drp/unicefdata/pkg/metadata"
)

// MetadataReader is the slice of the metadata store the resolver needs
type MetadataReader interface {
	Indicator(code string) (metadata.IndicatorEntry, bool)
	FallbackSequence(prefix string) ([]string, bool)
}

// Resolver produces ordered dataflow candidate lists for indicator codes.
// Pure over the injected metadata reader: no I/O, total, deterministic.
type Resolver struct {
	meta MetadataReader
}

// New creates a resolver over the given metadata reader
func New(meta MetadataReader) *Resolver {
	return &Resolver{meta: meta}
}

// Resolve returns the ordered dataflow candidates for an indicator code.
// Precedence is fixed: the indicator's direct dataflows, else the prefix
// fallback sequence, else the universal dataflow alone. The result is never
// empty and never errors; unknown codes still resolve via the universal
// dataflow and any failure signaling is deferred to the fetch layer.
func (r *Resolver) Resolve(indicatorCode string) []string {
	// Tier 1: direct indicator lookup
	if entry, ok := r.meta.Indicator(indicatorCode); ok && len(entry.Dataflows) > 0 {
		return withUniversal(dedupe(entry.Dataflows))
	}

	// Tier 2: prefix fallback sequence
	if seq, ok := r.meta.FallbackSequence(metadata.Prefix(indicatorCode)); ok && len(seq) > 0 {
		return append([]string(nil), seq...)
	}

	// Tier 3: universal catch-all
	return []string{metadata.UniversalDataflow}
}

func dedupe(dataflows []string) []string {
	seen := make(map[string]struct{}, len(dataflows))
	out := make([]string, 0, len(dataflows))

	for _, id := range dataflows {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

func withUniversal(dataflows []string) []string {
	for _, id := range dataflows {
		if id == metadata.UniversalDataflow {
			return dataflows
		}
	}

	return append(dataflows, metadata.UniversalDataflow)
}
