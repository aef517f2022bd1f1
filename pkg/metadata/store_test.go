package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTables = `
version: 1
generated: 2026-08-01T00:00:00Z
indicators:
  CME_MRY0T4:
    name: Under-five mortality rate
    dataflows: [CME]
    tier: verified
    disaggregations: [SEX]
  ED_ANAR_L1:
    name: Adjusted net attendance rate, primary
    tier: limited
fallbacks:
  CME: [CME, GLOBAL_DATAFLOW]
  ED: [EDUCATION, ED_ADMIN, GLOBAL_DATAFLOW]
dataflows:
  CME:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR, SEX]
    totals: [SEX]
  GLOBAL_DATAFLOW:
    agency: UNICEF
    version: "1.0"
    dimensions: [REF_AREA, INDICATOR, SEX]
    totals: [SEX]
`

func writeTables(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "indicators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()

	return NewStore(logrus.New(), &Config{Path: writeTables(t, content)})
}

func TestStoreLoad(t *testing.T) {
	store := newTestStore(t, testTables)

	assert.False(t, store.Degraded())
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), store.GeneratedAt())

	entry, ok := store.Indicator("CME_MRY0T4")
	require.True(t, ok)
	assert.Equal(t, "CME_MRY0T4", entry.Code)
	assert.Equal(t, TierVerified, entry.Tier)
	assert.Equal(t, []string{"CME"}, entry.Dataflows)

	seq, ok := store.FallbackSequence("ED")
	require.True(t, ok)
	assert.Equal(t, []string{"EDUCATION", "ED_ADMIN", "GLOBAL_DATAFLOW"}, seq)

	schema, ok := store.Dataflow("CME")
	require.True(t, ok)
	assert.Equal(t, []string{"REF_AREA", "INDICATOR", "SEX"}, schema.Dimensions)
	assert.True(t, schema.SupportsTotal("SEX"))
	assert.False(t, schema.SupportsTotal("AGE"))
}

func TestStoreDegradesOnMissingFile(t *testing.T) {
	store := NewStore(logrus.New(), &Config{Path: filepath.Join(t.TempDir(), "missing.yaml")})

	assert.True(t, store.Degraded())

	// Built-in defaults must still resolve the core prefixes
	seq, ok := store.FallbackSequence("CME")
	require.True(t, ok)
	assert.NotEmpty(t, seq)
	assert.Equal(t, UniversalDataflow, seq[len(seq)-1])

	_, ok = store.Dataflow(UniversalDataflow)
	assert.True(t, ok)
}

func TestStoreDegradesOnCorruptFile(t *testing.T) {
	store := newTestStore(t, "indicators: [not, a, mapping")

	assert.True(t, store.Degraded())
}

func TestStoreRejectsUnknownVersion(t *testing.T) {
	store := newTestStore(t, "version: 99\nindicators: {}")

	// Unknown table version degrades the same as a missing file
	assert.True(t, store.Degraded())
}

func TestStoreReload(t *testing.T) {
	path := writeTables(t, testTables)
	store := NewStore(logrus.New(), &Config{Path: path})

	_, ok := store.Indicator("NEW_INDICATOR")
	require.False(t, ok)

	updated := testTables + `
  NEW_INDICATOR:
    name: Added by sync
    tier: verified
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, store.Reload())

	assert.False(t, store.Degraded())
	_, ok = store.Indicator("NEW_INDICATOR")
	assert.True(t, ok)
}

func TestStoreReloadKeepsSnapshotOnFailure(t *testing.T) {
	path := writeTables(t, testTables)
	store := NewStore(logrus.New(), &Config{Path: path})

	require.NoError(t, os.Remove(path))
	err := store.Reload()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)

	// Old snapshot still served
	_, ok := store.Indicator("CME_MRY0T4")
	assert.True(t, ok)
}

func TestStoreSearch(t *testing.T) {
	store := newTestStore(t, testTables)

	matches := store.Search("mortality")
	require.Len(t, matches, 1)
	assert.Equal(t, "CME_MRY0T4", matches[0].Code)

	matches = store.Search("ed_")
	require.Len(t, matches, 1)
	assert.Equal(t, "ED_ANAR_L1", matches[0].Code)

	assert.Empty(t, store.Search("no such indicator"))
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"CME_MRY0T4", "CME"},
		{"ED_ANAR_L1", "ED"},
		{"NT_ANT_HAZ_NE2", "NT"},
		{"HVA_EPI_LHIV", "HVA"},
		{"PV4", "PV"},
		{"nutrition_x", "NUTRITION"},
		{"PLAIN", "PLAIN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Prefix(tt.code), "prefix of %s", tt.code)
	}
}
