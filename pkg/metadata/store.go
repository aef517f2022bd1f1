package metadata

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// supportedVersion is the metadata table format this client reads
const supportedVersion = 1

// Store serves the loaded metadata tables. Read-only after load; Reload swaps
// the snapshot reference atomically so concurrent readers are safe without
// further locking.
type Store struct {
	log    logrus.FieldLogger
	config *Config

	mu       sync.RWMutex
	snapshot *Snapshot
	degraded bool
}

// NewStore loads the metadata tables and returns a ready store. A missing or
// unreadable table file degrades to the built-in default tables rather than
// failing.
func NewStore(logger logrus.FieldLogger, cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.SetDefaults()

	s := &Store{
		log:    logger.WithField("component", "metadata"),
		config: cfg,
	}

	snap, err := loadSnapshot(cfg.Path)
	if err != nil {
		s.log.WithError(err).WithField("path", cfg.Path).
			Warn("Metadata tables unavailable, degrading to built-in defaults")

		snap = defaultSnapshot()
		s.degraded = true
	}

	s.snapshot = snap
	s.warnIfStale(snap)

	return s
}

// Reload re-reads the metadata tables and swaps the snapshot. In-flight
// readers keep the snapshot they already hold.
func (s *Store) Reload() error {
	snap, err := loadSnapshot(s.config.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	s.mu.Lock()
	s.snapshot = snap
	s.degraded = false
	s.mu.Unlock()

	s.log.WithField("generated", snap.GeneratedAt).Info("Reloaded metadata tables")
	s.warnIfStale(snap)

	return nil
}

// Degraded reports whether the store is serving the built-in default tables
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.degraded
}

// GeneratedAt returns the snapshot's generation timestamp
func (s *Store) GeneratedAt() time.Time {
	return s.current().GeneratedAt
}

// Indicator looks up an indicator entry by exact code
func (s *Store) Indicator(code string) (IndicatorEntry, bool) {
	entry, ok := s.current().Indicators[code]
	if ok {
		entry.Code = code
	}

	return entry, ok
}

// FallbackSequence returns the ordered dataflow sequence for an indicator
// prefix
func (s *Store) FallbackSequence(prefix string) ([]string, bool) {
	seq, ok := s.current().Fallbacks[prefix]

	return seq, ok
}

// Dataflow returns the positional dimension schema for a dataflow
func (s *Store) Dataflow(id string) (DataflowSchema, bool) {
	schema, ok := s.current().Dataflows[id]
	if ok {
		schema.ID = id
	}

	return schema, ok
}

// Indicators returns all indicator entries sorted by code
func (s *Store) Indicators() []IndicatorEntry {
	snap := s.current()

	entries := make([]IndicatorEntry, 0, len(snap.Indicators))
	for code, entry := range snap.Indicators {
		entry.Code = code
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })

	return entries
}

// Search returns indicators whose code or name contains the term,
// case-insensitive, sorted by code
func (s *Store) Search(term string) []IndicatorEntry {
	needle := strings.ToLower(term)

	var matches []IndicatorEntry
	for _, entry := range s.Indicators() {
		if strings.Contains(strings.ToLower(entry.Code), needle) ||
			strings.Contains(strings.ToLower(entry.Name), needle) {
			matches = append(matches, entry)
		}
	}

	return matches
}

func (s *Store) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

func (s *Store) warnIfStale(snap *Snapshot) {
	if snap.GeneratedAt.IsZero() {
		return
	}

	age := time.Since(snap.GeneratedAt)
	if age > s.config.MaxAge {
		s.log.WithFields(logrus.Fields{
			"generated": snap.GeneratedAt,
			"age":       age.Round(time.Hour),
		}).Warn("Metadata tables are stale, consider refreshing the snapshot")
	}
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided metadata path
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse metadata tables: %w", err)
	}

	if snap.Version != supportedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}

	if snap.Indicators == nil {
		snap.Indicators = map[string]IndicatorEntry{}
	}
	if snap.Fallbacks == nil {
		snap.Fallbacks = map[string][]string{}
	}
	if snap.Dataflows == nil {
		snap.Dataflows = map[string]DataflowSchema{}
	}

	return &snap, nil
}
