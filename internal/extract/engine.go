// Package extract turns source URLs into readable article text by racing
// several extraction strategies under one deadline and keeping the best
// result. Extraction is best-effort: a total failure returns an
// unsuccessful result, never an error, so the verification pipeline can
// fall back to search snippets.
package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/metrics"
)

const (
	defaultUserAgent        = "Mozilla/5.0 (compatible; claimsift/1.0)"
	defaultMinContentLength = 100
	defaultMaxContentLength = 10000

	// MethodCache marks results served from the content cache.
	MethodCache = "cache"
	// MethodBlocked marks URLs short-circuited by the blocklist.
	MethodBlocked = "blocked"
	// MethodNone marks a race in which every strategy failed.
	MethodNone = "none"

	contentKeyPrefix = "content:"

	// lengthWindow is the fraction of the longest result within which a
	// higher-priority method is preferred over raw length.
	lengthWindow = 0.8
)

// Config tunes the extraction engine.
type Config struct {
	// Timeout is the shared deadline for one extraction race (default 10s).
	Timeout time.Duration
	// MinContentLength below which a result is useless (default 100).
	MinContentLength int
	// MaxContentLength to which winning content is truncated (default 10000).
	MaxContentLength int
	// CacheTTL for extracted content (default 1h).
	CacheTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MinContentLength <= 0 {
		c.MinContentLength = defaultMinContentLength
	}
	if c.MaxContentLength <= 0 {
		c.MaxContentLength = defaultMaxContentLength
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
}

// Engine races extraction strategies and caches winning content per URL.
type Engine struct {
	cfg        Config
	strategies []Strategy
	blocklist  *Blocklist
	store      *cache.Store
	clock      claims.Clock
	logger     *zap.Logger
}

// NewEngine builds an Engine over the given strategies. A nil blocklist
// blocks nothing.
func NewEngine(cfg Config, strategies []Strategy, blocklist *Blocklist, store *cache.Store, clock claims.Clock, logger *zap.Logger) *Engine {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		strategies: strategies,
		blocklist:  blocklist,
		store:      store,
		clock:      clock,
		logger:     logger.Named("extract"),
	}
}

// Extract resolves url to article text. The result is unsuccessful, not
// an error, when the domain is blocked or every strategy fails.
func (e *Engine) Extract(ctx context.Context, url, domainHint string) claims.ExtractionResult {
	start := e.clock.Now()
	domain := claims.DomainOf(url)

	if e.blocklist.IsBlocked(domain) {
		metrics.ObserveExtraction(MethodBlocked, "blocked", 0)
		return claims.ExtractionResult{
			Method: MethodBlocked,
			Error:  fmt.Sprintf("domain %s is blocklisted", domain),
		}
	}

	key := contentKeyPrefix + url
	if cached, ok := e.store.Get(key); ok {
		metrics.ObserveCacheLookup("content", true)
		if content, ok := cached.(string); ok {
			return claims.ExtractionResult{
				Content:  content,
				Method:   MethodCache,
				Success:  true,
				Duration: e.clock.Now().Sub(start),
			}
		}
	}
	metrics.ObserveCacheLookup("content", false)

	winner, errSummary := e.race(ctx, url, categoryFor(domain, domainHint))
	elapsed := e.clock.Now().Sub(start)

	if winner == nil {
		metrics.ObserveExtraction(MethodNone, "failure", elapsed)
		e.logger.Debug("extraction failed",
			zap.String("url", url),
			zap.String("errors", errSummary))
		return claims.ExtractionResult{
			Method:   MethodNone,
			Duration: elapsed,
			Error:    errSummary,
		}
	}

	content := winner.content
	if len(content) > e.cfg.MaxContentLength {
		content = content[:e.cfg.MaxContentLength]
	}
	e.store.Set(key, content, e.cfg.CacheTTL)
	metrics.ObserveExtraction(winner.name, "success", elapsed)
	e.logger.Debug("extraction succeeded",
		zap.String("url", url),
		zap.String("method", winner.name),
		zap.Int("length", len(content)))
	return claims.ExtractionResult{
		Content:  content,
		Method:   winner.name,
		Success:  true,
		Duration: elapsed,
	}
}

// CacheStats exposes the content cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.store.Stats()
}

type candidate struct {
	name     string
	priority int
	content  string
	err      error
}

// race runs every strategy concurrently under the shared deadline and
// picks the best candidate: longest content, except that a result within
// the length window of the longest and produced by a higher-priority
// method wins instead.
func (e *Engine) race(ctx context.Context, url, category string) (*candidate, string) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	results := make(chan candidate, len(e.strategies))
	for _, s := range e.strategies {
		go func(s Strategy) {
			content, err := s.Extract(ctx, url, category)
			results <- candidate{name: s.Name(), priority: s.Priority(), content: content, err: err}
		}(s)
	}

	var valid []candidate
	var failures []string
	for range e.strategies {
		c := <-results
		if c.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", c.name, c.err))
			continue
		}
		if len(c.content) < e.cfg.MinContentLength {
			failures = append(failures, fmt.Sprintf("%s: content too short (%d)", c.name, len(c.content)))
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil, strings.Join(failures, "; ")
	}

	sort.Slice(valid, func(i, j int) bool { return len(valid[i].content) > len(valid[j].content) })
	best := valid[0]
	for _, c := range valid[1:] {
		if float64(len(c.content)) >= lengthWindow*float64(len(best.content)) && c.priority > best.priority {
			best = c
		}
	}
	return &best, strings.Join(failures, "; ")
}
