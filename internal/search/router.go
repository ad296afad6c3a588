// Package search routes queries across web search providers with health
// tracking, retry, response caching, and a degraded mode that answers from
// cache similarity or curated sources when every provider is down. The
// router never returns an error: total failure yields an empty response
// with an explanatory message, and the pipeline continues.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/metrics"
)

// ProviderNone marks a response produced with no provider at all.
const ProviderNone = "none"

// ProviderCacheSimilar marks a degraded response reused from a cached
// response to a similar query.
const ProviderCacheSimilar = "cache_similar"

const cacheKeyPrefix = "search:"

// RouterConfig tunes the Router.
type RouterConfig struct {
	// CacheTTL for successful responses (default 1h).
	CacheTTL time.Duration
	// SimilarityThreshold for degraded-mode cache reuse (default 0.3).
	SimilarityThreshold float64
	// DefaultMaxResults when a caller passes zero (default 10).
	DefaultMaxResults int
}

func (c *RouterConfig) applyDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 0.3
	}
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = 10
	}
}

// Router fans a query out to providers in health order. It satisfies
// both the Searcher contract and the prefetcher's Warmer contract.
type Router struct {
	cfg        RouterConfig
	providers  []claims.SearchProvider
	health     *healthTable
	retry      *retryPolicy
	store      *cache.Store
	similarity cache.Similarity
	clock      claims.Clock
	logger     *zap.Logger

	// sleep is swappable so tests skip real backoff waits.
	sleep func(ctx context.Context, d time.Duration)
}

// NewRouter builds a Router over the given providers; their order is the
// priority baseline when health is tied.
func NewRouter(cfg RouterConfig, providers []claims.SearchProvider, store *cache.Store, clock claims.Clock, logger *zap.Logger) *Router {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:        cfg,
		providers:  providers,
		health:     newHealthTable(clock.Now),
		retry:      newRetryPolicy(),
		store:      store,
		similarity: cache.TokenOverlap,
		clock:      clock,
		logger:     logger.Named("search"),
		sleep:      sleepContext,
	}
}

// Search resolves query against the healthiest provider available,
// falling back through the provider list and finally into degraded mode.
// It never returns an error: callers always get a usable response, empty
// at worst.
func (r *Router) Search(ctx context.Context, query string, maxResults int) claims.SearchResponse {
	if maxResults <= 0 {
		maxResults = r.cfg.DefaultMaxResults
	}
	start := r.clock.Now()
	key := cacheKey(query, maxResults)

	if cached, ok := r.store.Get(key); ok {
		metrics.ObserveCacheLookup("search", true)
		if resp, ok := cached.(claims.SearchResponse); ok {
			resp.CacheHit = true
			resp.ProcessingTime = r.clock.Now().Sub(start)
			return resp
		}
	}
	metrics.ObserveCacheLookup("search", false)

	var lastErr error
	for _, name := range r.health.rank(r.providerNames()) {
		provider := r.provider(name)
		if provider == nil {
			continue
		}
		results, err := r.searchProvider(ctx, provider, query, maxResults)
		if err != nil {
			lastErr = err
			r.health.recordFailure(name, err)
			metrics.ObserveSearch(name, "failure")
			r.logger.Warn("provider failed",
				zap.String("provider", name),
				zap.String("query", query),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(results) == 0 {
			// A provider that answers with nothing is as useless as one
			// that errors: keep failing over, and never cache the empty
			// response.
			lastErr = fmt.Errorf("provider %s returned no results", name)
			r.health.recordFailure(name, lastErr)
			metrics.ObserveSearch(name, "empty")
			r.logger.Warn("provider returned no results",
				zap.String("provider", name),
				zap.String("query", query))
			continue
		}
		r.health.recordSuccess(name)
		metrics.ObserveSearch(name, "success")
		resp := claims.SearchResponse{
			Results:        results,
			ProviderUsed:   name,
			Query:          query,
			TotalResults:   len(results),
			ProcessingTime: r.clock.Now().Sub(start),
		}
		r.store.Set(key, resp, r.cfg.CacheTTL)
		return resp
	}

	r.logger.Warn("all providers failed, entering degraded mode",
		zap.String("query", query), zap.Error(lastErr))
	if resp, ok := r.degraded(query, maxResults); ok {
		resp.ProcessingTime = r.clock.Now().Sub(start)
		return resp
	}

	msg := "no search providers available"
	if lastErr != nil {
		msg = fmt.Sprintf("no search providers available: %v", lastErr)
	}
	return claims.SearchResponse{
		ProviderUsed:   ProviderNone,
		Query:          query,
		ProcessingTime: r.clock.Now().Sub(start),
		ErrorMessage:   msg,
	}
}

// Warm runs query through Search purely to populate the cache.
func (r *Router) Warm(ctx context.Context, query string) {
	r.Search(ctx, query, r.cfg.DefaultMaxResults)
	metrics.ObservePrefetch()
}

// ProviderHealth returns a snapshot of every provider's health record.
func (r *Router) ProviderHealth() []ProviderHealth {
	return r.health.snapshot()
}

// CacheStats exposes the backing store counters.
func (r *Router) CacheStats() cache.Stats {
	return r.store.Stats()
}

// searchProvider runs one provider with retries for network-class errors.
func (r *Router) searchProvider(ctx context.Context, p claims.SearchProvider, query string, maxResults int) ([]claims.SearchResult, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		results, err := p.Search(ctx, query, maxResults)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if !r.retry.shouldRetry(err, attempt) {
			return nil, lastErr
		}
		r.logger.Debug("retrying provider",
			zap.String("provider", p.Name()),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		r.sleep(ctx, r.retry.backoff(attempt))
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
}

// degraded answers from cached similar queries first, then from curated
// topic sources.
func (r *Router) degraded(query string, maxResults int) (claims.SearchResponse, bool) {
	if resp, ok := r.similarCached(query); ok {
		metrics.ObserveDegradedSearch("cache_similar")
		resp.ProviderUsed = ProviderCacheSimilar
		resp.CacheHit = true
		return resp, true
	}
	if results := curatedResults(query, maxResults); len(results) > 0 {
		metrics.ObserveDegradedSearch("curated")
		return claims.SearchResponse{
			Results:      results,
			ProviderUsed: ProviderCurated,
			Query:        query,
			TotalResults: len(results),
		}, true
	}
	return claims.SearchResponse{}, false
}

// similarCached scans live cache keys for the closest previously answered
// query at or above the similarity threshold.
func (r *Router) similarCached(query string) (claims.SearchResponse, bool) {
	bestScore := 0.0
	bestKey := ""
	for _, key := range r.store.Keys() {
		cachedQuery, ok := queryFromKey(key)
		if !ok {
			continue
		}
		score := r.similarity(query, cachedQuery)
		if score >= r.cfg.SimilarityThreshold && score > bestScore {
			bestScore = score
			bestKey = key
		}
	}
	if bestKey == "" {
		return claims.SearchResponse{}, false
	}
	cached, ok := r.store.Get(bestKey)
	if !ok {
		return claims.SearchResponse{}, false
	}
	resp, ok := cached.(claims.SearchResponse)
	if !ok {
		return claims.SearchResponse{}, false
	}
	r.logger.Info("degraded mode answered from similar cached query",
		zap.String("query", query),
		zap.String("cached_query", resp.Query),
		zap.Float64("similarity", bestScore))
	return resp, true
}

func (r *Router) providerNames() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

func (r *Router) provider(name string) claims.SearchProvider {
	for _, p := range r.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func cacheKey(query string, maxResults int) string {
	return fmt.Sprintf("%s%s:%d", cacheKeyPrefix, strings.ToLower(strings.TrimSpace(query)), maxResults)
}

// queryFromKey recovers the normalized query embedded in a cache key.
func queryFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, cacheKeyPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(key, cacheKeyPrefix)
	idx := strings.LastIndex(rest, ":")
	if idx < 0 {
		return "", false
	}
	return rest[:idx], true
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
