// Package testutil provides shared helpers for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/unicef-drp/unicefdata/pkg/metadata"
)

// metadataTables is a small but representative snapshot: a directly mapped
// indicator, a prefix-only family with a two-step fallback, and schemas of
// different dimensionality.
const metadataTables = `
version: 1
generated: 2026-08-01T00:00:00Z
indicators:
  CME_MRY0T4:
    name: Under-five mortality rate
    dataflows: [CME]
    tier: verified
    disaggregations: [SEX]
  NT_ANT_HAZ_NE2:
    name: Height-for-age <-2 SD (stunting)
    tier: verified
    disaggregations: [SEX, AGE, WEALTH_QUINTILE, RESIDENCE]
fallbacks:
  CME: [CME, GLOBAL_DATAFLOW]
  NT: [NUTRITION, GLOBAL_DATAFLOW]
  ED: [EDUCATION, ED_ADMIN, GLOBAL_DATAFLOW]
dataflows:
  CME:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR, SEX]
    totals: [SEX]
  NUTRITION:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR, SEX, AGE, WEALTH_QUINTILE, RESIDENCE]
    totals: [SEX, WEALTH_QUINTILE, RESIDENCE]
  EDUCATION:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR, SEX]
    totals: [SEX]
  ED_ADMIN:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR]
  GLOBAL_DATAFLOW:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR, SEX]
    totals: [SEX]
`

// NewMetadataStore loads a metadata store from the standard test tables
func NewMetadataStore(t *testing.T) *metadata.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "indicators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(metadataTables), 0o644))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	store := metadata.NewStore(logger, &metadata.Config{Path: path})
	require.False(t, store.Degraded())

	return store
}

// Logger returns a quiet logger for tests
func Logger(_ *testing.T) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return logger
}
