package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef-drp/unicefdata/pkg/normalizer"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *ResultCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, New(client, &Config{Enabled: true, Address: mr.Addr(), TTL: time.Hour})
}

func sampleTable() *normalizer.Table {
	return &normalizer.Table{
		Level: normalizer.LevelStandard,
		Rows: []normalizer.Record{
			{Iso3: "KEN", Indicator: "CME_MRY0T4", Period: 2020.0, Value: 41.4, Sex: "_T"},
			{Iso3: "UGA", Indicator: "CME_MRY0T4", Period: 2020.0, Value: math.NaN(), Sex: "_T"},
		},
	}
}

func TestResultCacheRoundTrip(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()
	spec := &sdmx.QuerySpec{Indicator: "CME_MRY0T4", Countries: []string{"KEN", "UGA"}}

	got, err := c.Get(ctx, spec, normalizer.LevelStandard)
	require.NoError(t, err)
	assert.Nil(t, got, "cold cache misses")

	require.NoError(t, c.Set(ctx, spec, sampleTable()))

	got, err = c.Get(ctx, spec, normalizer.LevelStandard)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "KEN", got.Rows[0].Iso3)
	assert.True(t, math.IsNaN(got.Rows[1].Value), "missing values survive the round trip")
}

func TestResultCacheKeyDiscriminates(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	spec := &sdmx.QuerySpec{Indicator: "CME_MRY0T4"}
	require.NoError(t, c.Set(ctx, spec, sampleTable()))

	// Different level, countries or filters must miss
	got, err := c.Get(ctx, spec, normalizer.LevelFull)
	require.NoError(t, err)
	assert.Nil(t, got)

	other := &sdmx.QuerySpec{Indicator: "CME_MRY0T4", Countries: []string{"KEN"}}
	got, err = c.Get(ctx, other, normalizer.LevelStandard)
	require.NoError(t, err)
	assert.Nil(t, got)

	filtered := &sdmx.QuerySpec{Indicator: "CME_MRY0T4", Filters: map[string][]string{"SEX": {"F"}}}
	got, err = c.Get(ctx, filtered, normalizer.LevelStandard)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCacheTTLExpiry(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	spec := &sdmx.QuerySpec{Indicator: "CME_MRY0T4"}

	require.NoError(t, c.Set(ctx, spec, sampleTable()))

	mr.FastForward(2 * time.Hour)

	got, err := c.Get(ctx, spec, normalizer.LevelStandard)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCacheInvalidate(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()
	spec := &sdmx.QuerySpec{Indicator: "CME_MRY0T4"}

	require.NoError(t, c.Set(ctx, spec, sampleTable()))
	require.NoError(t, c.Invalidate(ctx, spec, normalizer.LevelStandard))

	got, err := c.Get(ctx, spec, normalizer.LevelStandard)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCacheNilIsNoop(t *testing.T) {
	var c *ResultCache
	ctx := context.Background()
	spec := &sdmx.QuerySpec{Indicator: "CME_MRY0T4"}

	got, err := c.Get(ctx, spec, normalizer.LevelStandard)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, spec, sampleTable()))
	assert.NoError(t, c.Invalidate(ctx, spec, normalizer.LevelStandard))
}
