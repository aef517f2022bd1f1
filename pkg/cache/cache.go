package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unicef-drp/unicefdata/pkg/normalizer"
	"github.com/unicef-drp/unicefdata/pkg/sdmx"
)

// ResultCache stores normalized fetch results in Redis with a TTL. A nil
// *ResultCache is a valid no-op cache, so callers need no enabled checks.
type ResultCache struct {
	client *redis.Client
	config *Config
}

// envelope wraps a cached table with its write time
type envelope struct {
	Level    normalizer.Level    `json:"level"`
	Rows     []normalizer.Record `json:"rows"`
	CachedAt time.Time           `json:"cachedAt"`
}

// New creates a result cache over the given Redis client
func New(client *redis.Client, cfg *Config) *ResultCache {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.SetDefaults()

	return &ResultCache{client: client, config: cfg}
}

// Get retrieves a cached result, returning nil on a miss
func (c *ResultCache) Get(ctx context.Context, spec *sdmx.QuerySpec, level normalizer.Level) (*normalizer.Table, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.key(spec, level)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, err
	}

	return &normalizer.Table{Level: env.Level, Rows: env.Rows}, nil
}

// Set stores a normalized result under the query's cache key
func (c *ResultCache) Set(ctx context.Context, spec *sdmx.QuerySpec, table *normalizer.Table) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(envelope{
		Level:    table.Level,
		Rows:     table.Rows,
		CachedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.key(spec, table.Level), data, c.config.TTL).Err()
}

// Invalidate removes one query's cached result
func (c *ResultCache) Invalidate(ctx context.Context, spec *sdmx.QuerySpec, level normalizer.Level) error {
	if c == nil || c.client == nil {
		return nil
	}

	return c.client.Del(ctx, c.key(spec, level)).Err()
}

// key builds a deterministic cache key from every field that changes the
// result: indicator, countries, year range, filters and schema level.
func (c *ResultCache) key(spec *sdmx.QuerySpec, level normalizer.Level) string {
	var b strings.Builder

	b.WriteString(spec.Indicator)
	b.WriteByte('|')
	b.WriteString(strings.Join(spec.Countries, "+"))
	fmt.Fprintf(&b, "|%d|%d|", spec.StartYear, spec.EndYear)

	dims := make([]string, 0, len(spec.Filters))
	for dim := range spec.Filters {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	for _, dim := range dims {
		fmt.Fprintf(&b, "%s=%s;", dim, strings.Join(spec.Filters[dim], "+"))
	}

	b.WriteByte('|')
	b.WriteString(string(level))

	sum := sha256.Sum256([]byte(b.String()))

	return c.config.PrefixKey("result:" + hex.EncodeToString(sum[:16]))
}
