// Package cache provides a keyed, TTL-based in-memory store for normalized
// catalog result sets.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/everstacklabs/modelfeed/internal/catalog"
)

// Default TTLs. Fallback results expire sooner so the network is retried
// instead of serving static data for half an hour.
const (
	DefaultTTL  = 30 * time.Minute
	FallbackTTL = 5 * time.Minute
)

// Entry is one cached result set. Entries are replaced wholesale on Put,
// never mutated in place.
type Entry struct {
	Key       string
	Models    []catalog.Model
	FetchedAt time.Time
	TTL       time.Duration
}

// Stats summarizes cache contents for observability.
type Stats struct {
	EntryCount      int       `json:"entry_count"`
	TotalModels     int       `json:"total_models"`
	TotalFreeModels int       `json:"total_free_models"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Store is a concurrency-safe TTL cache. The clock is injectable so expiry
// behavior is testable without sleeping.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key derives the partition key for one fetch. Free-filtered and
// authenticated result sets never collide.
func Key(freeOnly, hasAPIKey bool) string {
	return fmt.Sprintf("free=%t auth=%t", freeOnly, hasAPIKey)
}

// Get returns a fresh entry for key. Expiry is lazy: an entry written at T
// with TTL d is fresh for reads strictly before T+d and absent from then on.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if s.now().Sub(e.FetchedAt) >= e.TTL {
		return Entry{}, false
	}
	return e, true
}

// Put stores a result set under key, superseding any prior entry.
func (s *Store) Put(key string, models []catalog.Model, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{
		Key:       key,
		Models:    models,
		FetchedAt: s.now(),
		TTL:       ttl,
	}
}

// InvalidateAll clears every partition and returns the prior entry count.
func (s *Store) InvalidateAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.entries = make(map[string]Entry)
	return n
}

// Stats reports entry and model counts across all partitions. Expired
// entries still resident are not counted.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	now := s.now()
	for _, e := range s.entries {
		if now.Sub(e.FetchedAt) >= e.TTL {
			continue
		}
		st.EntryCount++
		st.TotalModels += len(e.Models)
		for _, m := range e.Models {
			if m.Pricing.IsFree {
				st.TotalFreeModels++
			}
		}
		if e.FetchedAt.After(st.LastUpdated) {
			st.LastUpdated = e.FetchedAt
		}
	}
	return st
}
