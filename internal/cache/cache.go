// Package cache implements an in-memory store with per-entry TTL expiry and
// LRU eviction, plus hit/miss accounting. One Store instance backs each
// logical cache domain (search responses, extracted page content); the cache
// is memory-only and lost on restart by design.
package cache

import (
	"sort"
	"sync"
	"time"
)

const (
	// maintenanceThreshold triggers an expired-entry sweep once occupancy
	// reaches this fraction of capacity.
	maintenanceThreshold = 0.9
	// evictionFraction of entries removed when the store is still full
	// after the sweep.
	evictionFraction = 10
)

type entry struct {
	value       any
	createdAt   time.Time
	ttl         time.Duration
	accessCount int
	lastAccess  time.Time
	seq         uint64
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Hits            int64   `json:"hits"`
	Misses          int64   `json:"misses"`
	Evictions       int64   `json:"evictions"`
	ExpiredCleanups int64   `json:"expired_cleanups"`
	Size            int     `json:"size"`
	MaxSize         int     `json:"max_size"`
	HitRate         float64 `json:"hit_rate"`
}

// Store is a bounded key/value cache safe for concurrent use. A single
// store-wide lock guards every operation; entries are always replaced
// whole, never updated in place.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
	seq        uint64

	hits            int64
	misses          int64
	evictions       int64
	expiredCleanups int64
}

// Option customizes a Store.
type Option func(*Store)

// WithNowFunc overrides the time source, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store holding at most maxSize entries, with defaultTTL
// applied to entries set without an explicit TTL.
func New(maxSize int, defaultTTL time.Duration, opts ...Option) *Store {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	s := &Store{
		entries:    make(map[string]*entry),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key, or ok=false on a miss. Expired entries are
// removed lazily here and count as misses. Access stats mutate the entry,
// so Get holds the exclusive lock like every other operation.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found {
		s.misses++
		return nil, false
	}
	now := s.now()
	if e.expired(now) {
		delete(s.entries, key)
		s.expiredCleanups++
		s.misses++
		return nil, false
	}
	e.accessCount++
	e.lastAccess = now
	s.hits++
	return e.value, true
}

// Set stores value under key, replacing any previous entry whole. A ttl of
// zero applies the store default. Maintenance runs before insertion: an
// expired sweep at 90% occupancy, then LRU eviction of 10% of entries if
// still at capacity.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		if len(s.entries) >= int(float64(s.maxSize)*maintenanceThreshold) {
			s.sweepExpiredLocked()
		}
		if len(s.entries) >= s.maxSize {
			s.evictLRULocked()
		}
	}

	s.seq++
	s.entries[key] = &entry{
		value:     value,
		createdAt: s.now(),
		ttl:       ttl,
		seq:       s.seq,
	}
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear removes all entries and resets counters.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	s.hits, s.misses, s.evictions, s.expiredCleanups = 0, 0, 0, 0
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns a snapshot of all live (non-expired) keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := s.hits + s.misses
	rate := 0.0
	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}
	return Stats{
		Hits:            s.hits,
		Misses:          s.misses,
		Evictions:       s.evictions,
		ExpiredCleanups: s.expiredCleanups,
		Size:            len(s.entries),
		MaxSize:         s.maxSize,
		HitRate:         rate,
	}
}

func (s *Store) sweepExpiredLocked() {
	now := s.now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			s.expiredCleanups++
		}
	}
}

// evictLRULocked removes the least recently used 10% of entries (minimum
// one). Entries never read rank by creation time; ties break by insertion
// order via the sequence number.
func (s *Store) evictLRULocked() {
	if len(s.entries) == 0 {
		return
	}
	type candidate struct {
		key string
		at  time.Time
		seq uint64
	}
	candidates := make([]candidate, 0, len(s.entries))
	for k, e := range s.entries {
		at := e.lastAccess
		if at.IsZero() {
			at = e.createdAt
		}
		candidates = append(candidates, candidate{key: k, at: at, seq: e.seq})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].at.Equal(candidates[j].at) {
			return candidates[i].seq < candidates[j].seq
		}
		return candidates[i].at.Before(candidates[j].at)
	})
	count := len(candidates) / evictionFraction
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		delete(s.entries, candidates[i].key)
		s.evictions++
	}
}
