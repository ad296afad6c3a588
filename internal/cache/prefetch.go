package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Warmer executes a query purely to populate caches; typically the search
// router. Results are discarded.
type Warmer interface {
	Warm(ctx context.Context, query string)
}

// PrefetchConfig tunes the background prefetcher.
type PrefetchConfig struct {
	// Interval between prediction passes (default 10 min).
	Interval time.Duration
	// Window of pattern history considered (default 24h).
	Window time.Duration
	// MaxQueries warmed per pass (default 5).
	MaxQueries int
	// MinObservations before a pattern participates (default 3).
	MinObservations int
	// SimilarityThreshold for grouping keywords (default 0.3).
	SimilarityThreshold float64
}

func (c *PrefetchConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 10 * time.Minute
	}
	if c.Window <= 0 {
		c.Window = 24 * time.Hour
	}
	if c.MaxQueries <= 0 {
		c.MaxQueries = 5
	}
	if c.MinObservations <= 0 {
		c.MinObservations = 3
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 0.3
	}
}

// claimTypeWeights bias prediction toward claim categories that historically
// repeat (political and medical claims trend hardest).
var claimTypeWeights = map[string]float64{
	"political":   1.4,
	"medical":     1.3,
	"scientific":  1.2,
	"financial":   1.1,
	"statistical": 1.0,
	"general":     0.9,
}

// Prefetcher periodically derives likely-future queries from access
// patterns and warms them through the Warmer. Strictly best-effort: every
// failure path only costs hit rate, never correctness.
type Prefetcher struct {
	cfg        PrefetchConfig
	tracker    *PatternTracker
	warmer     Warmer
	similarity Similarity
	logger     *zap.Logger
}

// NewPrefetcher builds a Prefetcher. A nil similarity falls back to
// TokenOverlap.
func NewPrefetcher(cfg PrefetchConfig, tracker *PatternTracker, warmer Warmer, similarity Similarity, logger *zap.Logger) *Prefetcher {
	cfg.applyDefaults()
	if similarity == nil {
		similarity = TokenOverlap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefetcher{
		cfg:        cfg,
		tracker:    tracker,
		warmer:     warmer,
		similarity: similarity,
		logger:     logger,
	}
}

// Run blocks, executing prediction passes until the context finishes.
func (p *Prefetcher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Prefetcher) runOnce(ctx context.Context) {
	queries := p.PredictQueries()
	for _, q := range queries {
		if ctx.Err() != nil {
			return
		}
		p.warmer.Warm(ctx, q)
	}
	if len(queries) > 0 {
		p.logger.Debug("prefetch pass complete", zap.Int("queries", len(queries)))
	}
}

// PredictQueries ranks candidate pre-fetch queries from recent access
// patterns: related keywords are grouped by similarity, and each group is
// scored by recency-weighted frequency times its dominant claim-type
// weight.
func (p *Prefetcher) PredictQueries() []string {
	patterns := p.tracker.Recent(p.cfg.Window)

	type scored struct {
		keyword string
		weight  float64
	}
	keywordWeight := make(map[string]float64)
	keywordType := make(map[string]string)
	now := time.Now().UTC()

	for _, pat := range patterns {
		if pat.Frequency < p.cfg.MinObservations {
			continue
		}
		recency := 1.0 - now.Sub(pat.LastAccess).Seconds()/p.cfg.Window.Seconds()
		if recency < 0 {
			recency = 0
		}
		weight := float64(pat.Frequency) * (0.5 + recency)
		claimType := dominant(pat.ClaimTypes)
		if w, ok := claimTypeWeights[claimType]; ok {
			weight *= w
		}
		for _, kw := range pat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			keywordWeight[kw] += weight
			keywordType[kw] = claimType
		}
	}
	if len(keywordWeight) == 0 {
		return nil
	}

	ranked := make([]scored, 0, len(keywordWeight))
	for kw, w := range keywordWeight {
		ranked = append(ranked, scored{keyword: kw, weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].weight > ranked[j].weight })

	// Group related keywords so one warm query covers a whole topic.
	var groups [][]string
	used := make(map[string]bool)
	for _, r := range ranked {
		if used[r.keyword] {
			continue
		}
		group := []string{r.keyword}
		used[r.keyword] = true
		for _, other := range ranked {
			if used[other.keyword] {
				continue
			}
			if p.similarity(r.keyword, other.keyword) >= p.cfg.SimilarityThreshold {
				group = append(group, other.keyword)
				used[other.keyword] = true
			}
		}
		groups = append(groups, group)
	}

	queries := make([]string, 0, p.cfg.MaxQueries)
	for _, group := range groups {
		if len(queries) >= p.cfg.MaxQueries {
			break
		}
		head := group
		if len(head) > 3 {
			head = head[:3]
		}
		query := strings.Join(head, " ")
		if ct := keywordType[group[0]]; ct != "" && ct != "general" {
			query = "fact check " + query + " " + ct
		}
		queries = append(queries, query)
	}
	return queries
}

func dominant(values []string) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
