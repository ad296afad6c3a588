package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

type fakeProvider struct {
	mu      sync.Mutex
	name    string
	results []claims.SearchResult
	errs    []error
	calls   int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(_ context.Context, _ string, _ int) ([]claims.SearchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	call := p.calls
	p.calls++
	if call < len(p.errs) && p.errs[call] != nil {
		return nil, p.errs[call]
	}
	return p.results, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func resultsFor(provider string, n int) []claims.SearchResult {
	out := make([]claims.SearchResult, n)
	for i := range out {
		out[i] = claims.SearchResult{
			URL:      fmt.Sprintf("https://example.com/%s/%d", provider, i),
			Title:    fmt.Sprintf("result %d", i),
			Provider: provider,
		}
	}
	return out
}

func newTestRouter(providers ...claims.SearchProvider) *Router {
	store := cache.New(100, time.Hour)
	r := NewRouter(RouterConfig{}, providers, store, &fixedClock{now: time.Unix(1748800000, 0)}, nil)
	r.sleep = func(context.Context, time.Duration) {}
	return r
}

func TestRouter_FirstProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "primary", results: resultsFor("primary", 2)}
	secondary := &fakeProvider{name: "secondary", results: resultsFor("secondary", 2)}
	r := newTestRouter(primary, secondary)

	resp := r.Search(context.Background(), "test query", 5)

	require.Equal(t, "primary", resp.ProviderUsed)
	require.Len(t, resp.Results, 2)
	require.Empty(t, resp.ErrorMessage)
	require.Zero(t, secondary.callCount())
}

func TestRouter_CachesResponses(t *testing.T) {
	primary := &fakeProvider{name: "primary", results: resultsFor("primary", 1)}
	r := newTestRouter(primary)

	first := r.Search(context.Background(), "repeat me", 5)
	second := r.Search(context.Background(), "repeat me", 5)

	require.False(t, first.CacheHit)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, primary.callCount())
	require.Equal(t, first.Results, second.Results)
}

func TestRouter_FailsOverOnProviderError(t *testing.T) {
	broken := &fakeProvider{
		name: "broken",
		errs: []error{&ProviderError{Provider: "broken", StatusCode: 400, Err: errors.New("bad request")}},
	}
	backup := &fakeProvider{name: "backup", results: resultsFor("backup", 1)}
	r := newTestRouter(broken, backup)

	resp := r.Search(context.Background(), "anything", 5)

	require.Equal(t, "backup", resp.ProviderUsed)
	require.Equal(t, 1, broken.callCount(), "non-network errors must not be retried")
}

func TestRouter_FailsOverOnEmptyResults(t *testing.T) {
	barren := &fakeProvider{name: "barren"} // succeeds with zero results
	backup := &fakeProvider{name: "backup", results: resultsFor("backup", 2)}
	r := newTestRouter(barren, backup)

	resp := r.Search(context.Background(), "anything", 5)

	require.Equal(t, "backup", resp.ProviderUsed)
	require.Len(t, resp.Results, 2)
	require.Equal(t, 1, barren.callCount())

	snap := r.ProviderHealth()
	for _, h := range snap {
		if h.Name == "barren" {
			require.Equal(t, 1, h.ConsecutiveFailures, "empty results must count as a failure")
		}
	}
}

func TestRouter_EmptyResultsNotCachedReachesCurated(t *testing.T) {
	barren := &fakeProvider{name: "barren"}
	r := newTestRouter(barren)

	resp := r.Search(context.Background(), "fact check vaccines misinformation", 5)

	require.Equal(t, ProviderCurated, resp.ProviderUsed)
	require.NotEmpty(t, resp.Results)

	// The empty provider response must not occupy the cache slot.
	again := r.Search(context.Background(), "fact check vaccines misinformation", 5)
	require.False(t, again.CacheHit)
	require.Equal(t, ProviderCurated, again.ProviderUsed)
}

func TestRouter_RetriesNetworkErrors(t *testing.T) {
	flaky := &fakeProvider{
		name: "flaky",
		errs: []error{
			&NetworkError{Provider: "flaky", Err: errors.New("conn reset")},
			&NetworkError{Provider: "flaky", Err: errors.New("conn reset")},
		},
		results: resultsFor("flaky", 1),
	}
	r := newTestRouter(flaky)

	resp := r.Search(context.Background(), "anything", 5)

	require.Equal(t, "flaky", resp.ProviderUsed)
	require.Equal(t, 3, flaky.callCount(), "two retries after the initial attempt")
}

func TestRouter_NoRetryOnRateLimit(t *testing.T) {
	limited := &fakeProvider{
		name: "limited",
		errs: []error{fmt.Errorf("limited: %w", ErrRateLimited)},
	}
	backup := &fakeProvider{name: "backup", results: resultsFor("backup", 1)}
	r := newTestRouter(limited, backup)

	resp := r.Search(context.Background(), "anything", 5)

	require.Equal(t, "backup", resp.ProviderUsed)
	require.Equal(t, 1, limited.callCount())
}

func TestRouter_SkipsUnhealthyProvider(t *testing.T) {
	backup := &fakeProvider{name: "backup", results: resultsFor("backup", 1)}
	failing := &fakeProvider{name: "failing"}
	for i := 0; i < failureThreshold+2; i++ {
		failing.errs = append(failing.errs, &ProviderError{Provider: "failing", Err: errors.New("down")})
	}
	r := newTestRouter(failing, backup)
	for i := 0; i <= failureThreshold; i++ {
		r.Search(context.Background(), fmt.Sprintf("query %d", i), 5)
	}
	callsBefore := failing.callCount()

	r.Search(context.Background(), "final query", 5)
	require.Equal(t, callsBefore, failing.callCount(), "provider past the failure threshold must be skipped")
}

func TestRouter_DegradedModeSimilarCache(t *testing.T) {
	working := &fakeProvider{name: "working", results: resultsFor("working", 2)}
	r := newTestRouter(working)

	// Populate the cache, then kill the provider.
	r.Search(context.Background(), "covid vaccine efficacy study", 5)
	working.errs = make([]error, 100)
	for i := range working.errs {
		working.errs[i] = &ProviderError{Provider: "working", Err: errors.New("down")}
	}
	working.calls = 0

	resp := r.Search(context.Background(), "covid vaccine efficacy data", 5)

	require.Equal(t, ProviderCacheSimilar, resp.ProviderUsed)
	require.True(t, resp.CacheHit)
	require.Len(t, resp.Results, 2)
}

func TestRouter_DegradedModeCuratedFallback(t *testing.T) {
	dead := &fakeProvider{name: "dead"}
	dead.errs = make([]error, 10)
	for i := range dead.errs {
		dead.errs[i] = &ProviderError{Provider: "dead", Err: errors.New("down")}
	}
	r := newTestRouter(dead)

	resp := r.Search(context.Background(), "fact check moon landing", 5)

	require.Equal(t, ProviderCurated, resp.ProviderUsed)
	require.NotEmpty(t, resp.Results)
	require.Equal(t, "snopes.com", resp.Results[0].Domain)
}

func TestRouter_TotalFailureNeverErrors(t *testing.T) {
	dead := &fakeProvider{name: "dead"}
	dead.errs = make([]error, 10)
	for i := range dead.errs {
		dead.errs[i] = &ProviderError{Provider: "dead", Err: errors.New("down")}
	}
	r := newTestRouter(dead)

	resp := r.Search(context.Background(), "zxqj wvut unmatchable", 5)

	require.Equal(t, ProviderNone, resp.ProviderUsed)
	require.Empty(t, resp.Results)
	require.NotEmpty(t, resp.ErrorMessage)
}

func TestRouter_ProviderHealthSnapshot(t *testing.T) {
	dead := &fakeProvider{name: "dead", errs: []error{&ProviderError{Provider: "dead", Err: errors.New("down")}}}
	live := &fakeProvider{name: "live", results: resultsFor("live", 1)}
	r := newTestRouter(dead, live)

	r.Search(context.Background(), "anything", 5)

	snap := r.ProviderHealth()
	byName := make(map[string]ProviderHealth, len(snap))
	for _, h := range snap {
		byName[h.Name] = h
	}
	require.Equal(t, 1, byName["dead"].ConsecutiveFailures)
	require.Equal(t, 0, byName["live"].ConsecutiveFailures)
	require.False(t, byName["live"].LastSuccessAt.IsZero())
}

func TestQueryFromKey(t *testing.T) {
	q, ok := queryFromKey("search:covid vaccine:10")
	require.True(t, ok)
	require.Equal(t, "covid vaccine", q)

	_, ok = queryFromKey("content:https://example.com")
	require.False(t, ok)
}
