package search

import (
	"sort"
	"sync"
	"time"
)

const (
	// failureThreshold of consecutive failures after which a provider is
	// skipped unless it has succeeded recently.
	failureThreshold = 5
	// recoveryWindow after the last success during which a struggling
	// provider still gets probed.
	recoveryWindow = 5 * time.Minute
)

// ProviderHealth is a snapshot of one provider's recent behavior.
type ProviderHealth struct {
	Name                string    `json:"name"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastSuccessAt       time.Time `json:"last_success_at,omitzero"`
	LastErrorMessage    string    `json:"last_error,omitempty"`
	TotalRequests       int64     `json:"total_requests"`
	TotalFailures       int64     `json:"total_failures"`
	RateLimitHits       int64     `json:"rate_limit_hits"`
	LastRateLimitedAt   time.Time `json:"last_rate_limited_at,omitzero"`
}

// Available reports whether the provider should be attempted: a provider
// with more than failureThreshold consecutive failures is skipped unless
// it succeeded within the recovery window.
func (h ProviderHealth) Available(now time.Time) bool {
	if h.ConsecutiveFailures <= failureThreshold {
		return true
	}
	if h.LastSuccessAt.IsZero() {
		return false
	}
	return now.Sub(h.LastSuccessAt) < recoveryWindow
}

// healthTable tracks per-provider health under one lock.
type healthTable struct {
	mu      sync.Mutex
	records map[string]*ProviderHealth
	now     func() time.Time
}

func newHealthTable(now func() time.Time) *healthTable {
	return &healthTable{
		records: make(map[string]*ProviderHealth),
		now:     now,
	}
}

func (t *healthTable) recordSuccess(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.record(name)
	h.ConsecutiveFailures = 0
	h.LastSuccessAt = t.now()
	h.LastErrorMessage = ""
	h.TotalRequests++
}

func (t *healthTable) recordFailure(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.record(name)
	h.ConsecutiveFailures++
	if err != nil {
		h.LastErrorMessage = err.Error()
	}
	if IsRateLimited(err) {
		h.RateLimitHits++
		h.LastRateLimitedAt = t.now()
	}
	h.TotalRequests++
	h.TotalFailures++
}

// rank returns the given provider names ordered healthiest-first
// (fewest consecutive failures; ties keep configured order) with
// unavailable providers filtered out.
func (t *healthTable) rank(names []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	type ranked struct {
		name     string
		failures int
		pos      int
	}
	out := make([]ranked, 0, len(names))
	for i, name := range names {
		h := t.record(name)
		if !h.Available(now) {
			continue
		}
		out = append(out, ranked{name: name, failures: h.ConsecutiveFailures, pos: i})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].failures == out[j].failures {
			return out[i].pos < out[j].pos
		}
		return out[i].failures < out[j].failures
	})
	result := make([]string, len(out))
	for i, r := range out {
		result[i] = r.name
	}
	return result
}

// snapshot returns a copy of every record for stats reporting.
func (t *healthTable) snapshot() []ProviderHealth {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ProviderHealth, 0, len(t.records))
	for _, h := range t.records {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// record must be called with the lock held.
func (t *healthTable) record(name string) *ProviderHealth {
	h, ok := t.records[name]
	if !ok {
		h = &ProviderHealth{Name: name}
		t.records[name] = h
	}
	return h
}
