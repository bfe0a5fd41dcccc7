package cache

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultTTL is how long a generated payload stays fresh.
const DefaultTTL = 24 * time.Hour

// Entry represents a cached payload. Entries are replaced, never mutated.
type Entry struct {
	Value    any
	StoredAt time.Time
}

// Options configures a Store
type Options struct {
	// TTL is the maximum age of an entry. Zero means DefaultTTL.
	TTL time.Duration

	// MaxEntries bounds the store; the least recently used entry is
	// evicted when a new key is added to a full store. Zero means unbounded.
	MaxEntries int

	// Now overrides the wall clock, mainly for tests.
	Now func() time.Time
}

// Store is an in-memory, process-scoped cache of validated payloads with
// lazy expiry. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, Entry]
	ttl     time.Duration
	now     func() time.Time

	hits      int
	misses    int
	expired   int
	evictions int
}

// New creates a new cache store
func New(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	size := opts.MaxEntries
	if size <= 0 {
		size = math.MaxInt
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// NewLRU only fails for a non-positive size.
	entries, _ := simplelru.NewLRU[string, Entry](size, nil)

	return &Store{
		entries: entries,
		ttl:     ttl,
		now:     now,
	}
}

// TTL returns the configured freshness window
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get retrieves a cached payload. An expired entry is removed as a side
// effect and reported as absent.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Get(key)
	if !ok {
		s.misses++
		return nil, false
	}

	if s.isExpired(entry.StoredAt) {
		s.entries.Remove(key)
		s.expired++
		s.misses++
		return nil, false
	}

	s.hits++
	return entry.Value, true
}

// Set stores a payload, replacing any existing entry for the key
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if evicted := s.entries.Add(key, Entry{Value: value, StoredAt: s.now()}); evicted {
		s.evictions++
	}
}

// Delete removes a single entry and reports whether it was present
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.entries.Remove(key)
}

// Clear removes all cached entries
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.entries.Len()
	s.entries.Purge()
	return removed
}

// Sweep removes all expired entries, including keys that are never read again
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, key := range s.entries.Keys() {
		entry, ok := s.entries.Peek(key)
		if !ok {
			continue
		}
		if s.isExpired(entry.StoredAt) {
			s.entries.Remove(key)
			removed++
		}
	}
	s.expired += removed
	return removed
}

// isExpired checks if an entry stored at storedAt is older than the TTL
func (s *Store) isExpired(storedAt time.Time) bool {
	return s.now().Sub(storedAt) > s.ttl
}

// Stats returns cache statistics
type Stats struct {
	Count       int        `json:"count"`
	Keys        []string   `json:"keys"`
	Hits        int        `json:"hits"`
	Misses      int        `json:"misses"`
	Expired     int        `json:"expired"`
	Evictions   int        `json:"evictions"`
	OldestEntry *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry *time.Time `json:"newest_entry,omitempty"`
}

// Stats returns a snapshot of the store. Keys are ordered from least to
// most recently used. It does not expire or reorder entries.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Count:     s.entries.Len(),
		Keys:      s.entries.Keys(),
		Hits:      s.hits,
		Misses:    s.misses,
		Expired:   s.expired,
		Evictions: s.evictions,
	}

	for _, key := range stats.Keys {
		entry, ok := s.entries.Peek(key)
		if !ok {
			continue
		}
		storedAt := entry.StoredAt
		if stats.OldestEntry == nil || storedAt.Before(*stats.OldestEntry) {
			stats.OldestEntry = &storedAt
		}
		if stats.NewestEntry == nil || storedAt.After(*stats.NewestEntry) {
			stats.NewestEntry = &storedAt
		}
	}

	return stats
}
