package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	maxAccessHistory  = 20
	maxKeywordHistory = 50
)

// AccessPattern records recent activity for one cache key so the prefetcher
// can rank likely-future queries.
type AccessPattern struct {
	Key         string
	AccessTimes []time.Time
	ClaimTypes  []string
	Keywords    []string
	Frequency   int
	LastAccess  time.Time
}

// PatternTracker accumulates per-key access patterns. Tracking is
// best-effort observability for the prefetcher; it never affects cache
// correctness.
type PatternTracker struct {
	mu       sync.Mutex
	patterns map[string]*AccessPattern
	now      func() time.Time
}

// NewPatternTracker creates an empty tracker.
func NewPatternTracker(opts ...TrackerOption) *PatternTracker {
	t := &PatternTracker{
		patterns: make(map[string]*AccessPattern),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TrackerOption customizes a PatternTracker.
type TrackerOption func(*PatternTracker)

// WithTrackerNowFunc overrides the time source, for tests.
func WithTrackerNowFunc(now func() time.Time) TrackerOption {
	return func(t *PatternTracker) { t.now = now }
}

// Track records one access of key with its claim context. Histories are
// bounded; oldest samples fall off first.
func (t *PatternTracker) Track(key, claimType string, keywords []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	p, ok := t.patterns[key]
	if !ok {
		p = &AccessPattern{Key: key}
		t.patterns[key] = p
	}
	p.AccessTimes = append(p.AccessTimes, now)
	p.ClaimTypes = append(p.ClaimTypes, claimType)
	p.Keywords = append(p.Keywords, keywords...)
	p.Frequency++
	p.LastAccess = now

	if len(p.AccessTimes) > maxAccessHistory {
		p.AccessTimes = p.AccessTimes[len(p.AccessTimes)-maxAccessHistory:]
		p.ClaimTypes = p.ClaimTypes[len(p.ClaimTypes)-maxAccessHistory:]
	}
	if len(p.Keywords) > maxKeywordHistory {
		p.Keywords = p.Keywords[len(p.Keywords)-maxKeywordHistory:]
	}
}

// Recent returns patterns touched within the window, most recent first.
func (t *PatternTracker) Recent(window time.Duration) []AccessPattern {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-window)
	out := make([]AccessPattern, 0, len(t.patterns))
	for _, p := range t.patterns {
		if p.LastAccess.After(cutoff) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccess.After(out[j].LastAccess)
	})
	return out
}

// Similarity scores two texts in [0,1]; used to group related keywords and
// to match degraded-mode queries against cached ones. Pluggable so a
// smarter implementation can replace the default.
type Similarity func(a, b string) float64

// TokenOverlap is the default Similarity: Jaccard index over lowercased
// whitespace tokens.
func TokenOverlap(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, `.,!?:;"'()`)
		if len(tok) > 2 {
			out[tok] = struct{}{}
		}
	}
	return out
}
