// Package verify orchestrates the claim verification pipeline: deriving
// search queries, gathering and ranking sources, extracting their content,
// analyzing evidence, and compiling an authenticity verdict per claim.
// Claims are processed concurrently under a bounded semaphore, and every
// submitted claim yields exactly one result regardless of upstream
// failures.
package verify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/checkpoint"
	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/metrics"
)

// Config tunes the orchestrator's concurrency and ranking.
type Config struct {
	// MaxConcurrentClaims bounds claims verified in parallel (default 10).
	MaxConcurrentClaims int
	// MaxConcurrentFetches bounds content extractions in flight across
	// all claims (default 20).
	MaxConcurrentFetches int
	// MaxQueriesPerClaim caps derived search queries (default 2, max 3).
	MaxQueriesPerClaim int
	// MaxResultsPerQuery requested from the search router (default 10).
	MaxResultsPerQuery int
	// MaxSources kept after ranking (default 10).
	MaxSources int
	// MinCredibility below which sources are dropped (default 0.4).
	MinCredibility float64
	// MaxExtractionTime bounds the whole content-extraction fan-out for
	// one claim (default 30s). Sources still pending at the deadline keep
	// their search snippets.
	MaxExtractionTime time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxConcurrentClaims <= 0 {
		c.MaxConcurrentClaims = 10
	}
	if c.MaxConcurrentFetches <= 0 {
		c.MaxConcurrentFetches = 20
	}
	if c.MaxQueriesPerClaim <= 0 {
		c.MaxQueriesPerClaim = 2
	}
	if c.MaxResultsPerQuery <= 0 {
		c.MaxResultsPerQuery = 10
	}
	if c.MaxSources <= 0 {
		c.MaxSources = 10
	}
	if c.MinCredibility <= 0 {
		c.MinCredibility = DefaultMinCredibility
	}
	if c.MaxExtractionTime <= 0 {
		c.MaxExtractionTime = 30 * time.Second
	}
}

// Orchestrator runs the verification pipeline.
type Orchestrator struct {
	cfg       Config
	searcher  claims.Searcher
	extractor claims.Extractor
	analyzer  claims.EvidenceAnalyzer
	scorer    claims.AuthenticityScorer
	monitor   *checkpoint.Monitor
	tracker   *cache.PatternTracker
	clock     claims.Clock
	ids       claims.IDGenerator
	logger    *zap.Logger

	claimSlots chan struct{}
	fetchSlots chan struct{}
}

// NewOrchestrator wires the pipeline. The tracker may be nil when
// predictive prefetching is disabled.
func NewOrchestrator(
	cfg Config,
	searcher claims.Searcher,
	extractor claims.Extractor,
	analyzer claims.EvidenceAnalyzer,
	scorer claims.AuthenticityScorer,
	monitor *checkpoint.Monitor,
	tracker *cache.PatternTracker,
	clock claims.Clock,
	ids claims.IDGenerator,
	logger *zap.Logger,
) *Orchestrator {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:        cfg,
		searcher:   searcher,
		extractor:  extractor,
		analyzer:   analyzer,
		scorer:     scorer,
		monitor:    monitor,
		tracker:    tracker,
		clock:      clock,
		ids:        ids,
		logger:     logger.Named("verify"),
		claimSlots: make(chan struct{}, cfg.MaxConcurrentClaims),
		fetchSlots: make(chan struct{}, cfg.MaxConcurrentFetches),
	}
}

// VerifyClaims verifies all claims concurrently and returns results in
// input order. A panic while verifying one claim becomes that claim's
// errored result; the others are unaffected.
func (o *Orchestrator) VerifyClaims(ctx context.Context, batch []claims.Claim) []claims.VerificationResult {
	results := make([]claims.VerificationResult, len(batch))
	var wg sync.WaitGroup
	for i, claim := range batch {
		wg.Add(1)
		go func(i int, claim claims.Claim) {
			defer wg.Done()
			select {
			case o.claimSlots <- struct{}{}:
				defer func() { <-o.claimSlots }()
			case <-ctx.Done():
				results[i] = o.erroredResult("", claim, fmt.Sprintf("canceled before start: %v", ctx.Err()))
				return
			}
			results[i] = o.verifyClaimSafe(ctx, claim)
		}(i, claim)
	}
	wg.Wait()
	return results
}

// VerifyClaim verifies a single claim, waiting for a concurrency slot.
func (o *Orchestrator) VerifyClaim(ctx context.Context, claim claims.Claim) claims.VerificationResult {
	select {
	case o.claimSlots <- struct{}{}:
		defer func() { <-o.claimSlots }()
	case <-ctx.Done():
		return o.erroredResult("", claim, fmt.Sprintf("canceled before start: %v", ctx.Err()))
	}
	return o.verifyClaimSafe(ctx, claim)
}

func (o *Orchestrator) verifyClaimSafe(ctx context.Context, claim claims.Claim) (result claims.VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic while verifying claim",
				zap.Any("panic", r),
				zap.String("claim", truncate(claim.Text, 80)))
			result = o.erroredResult(result.ClaimID, claim, fmt.Sprintf("internal error: %v", r))
		}
	}()
	return o.verifyClaim(ctx, claim)
}

func (o *Orchestrator) verifyClaim(ctx context.Context, claim claims.Claim) claims.VerificationResult {
	start := o.clock.Now()
	metrics.IncActiveClaims()
	defer metrics.DecActiveClaims()

	id, err := o.ids.NewID()
	if err != nil {
		return o.erroredResult("", claim, fmt.Sprintf("generate claim id: %v", err))
	}
	logger := o.logger.With(zap.String("claim_id", id))
	logger.Info("verifying claim",
		zap.String("claim", truncate(claim.Text, 80)),
		zap.String("type", string(claim.Type)))

	// trace accumulates this claim's stage timings for the monitor's
	// per-claim report.
	var trace []checkpoint.ClaimCheckpoint

	// Searching sources.
	var queries []string
	_ = o.stage(&trace, "query_generation", func() error {
		queries = BuildQueries(claim, o.cfg.MaxQueriesPerClaim)
		return nil
	})

	var responses []claims.SearchResponse
	_ = o.stage(&trace, "web_search_execution", func() error {
		responses = o.runSearches(ctx, claim, queries)
		return nil
	})

	var sources []claims.Source
	_ = o.stage(&trace, "source_prioritization", func() error {
		sources = o.rankSources(responses)
		return nil
	})

	if len(sources) == 0 {
		logger.Warn("no usable sources found")
		return o.finish(start, trace, claims.VerificationResult{
			ClaimID: id,
			Claim:   claim,
			Status:  claims.StatusUnverified,
			Verdict: claims.AuthenticityVerdict{
				Level:       LevelUnverified,
				Explanation: "no sources found for any derived query",
			},
		})
	}

	// Extracting content.
	_ = o.stage(&trace, "content_extraction_race", func() error {
		o.populateContent(ctx, claim, sources)
		return nil
	})

	// Analyzing evidence.
	var evidence, contradictions []claims.EvidenceItem
	analyzeErr := o.stage(&trace, "evidence_extraction", func() error {
		var err error
		evidence, contradictions, err = o.analyzer.Analyze(ctx, claim, sources)
		return err
	})
	if analyzeErr != nil {
		logger.Error("evidence analysis failed", zap.Error(analyzeErr))
		return o.finish(start, trace, claims.VerificationResult{
			ClaimID:   id,
			Claim:     claim,
			Status:    claims.StatusErrored,
			Sources:   sources,
			ErrorText: fmt.Sprintf("evidence analysis: %v", analyzeErr),
		})
	}

	// Scoring authenticity.
	var verdict claims.AuthenticityVerdict
	scoreErr := o.stage(&trace, "authenticity_calculation", func() error {
		var err error
		verdict, err = o.scorer.Score(ctx, claim, sources, evidence, contradictions)
		return err
	})
	if scoreErr != nil {
		logger.Error("authenticity scoring failed", zap.Error(scoreErr))
		return o.finish(start, trace, claims.VerificationResult{
			ClaimID:        id,
			Claim:          claim,
			Status:         claims.StatusErrored,
			Sources:        sources,
			Evidence:       evidence,
			Contradictions: contradictions,
			ErrorText:      fmt.Sprintf("authenticity scoring: %v", scoreErr),
		})
	}

	var result claims.VerificationResult
	_ = o.stage(&trace, "result_compilation", func() error {
		result = claims.VerificationResult{
			ClaimID:        id,
			Claim:          claim,
			Status:         claims.StatusCompiled,
			Sources:        sources,
			Evidence:       evidence,
			Contradictions: contradictions,
			Verdict:        verdict,
		}
		return nil
	})
	logger.Info("claim compiled",
		zap.Float64("score", verdict.Score),
		zap.String("level", verdict.Level),
		zap.Int("sources", len(sources)),
		zap.Int("evidence", len(evidence)))
	return o.finish(start, trace, result)
}

// stage times fn as a monitor checkpoint and appends the timing to the
// claim's trace.
func (o *Orchestrator) stage(trace *[]checkpoint.ClaimCheckpoint, name string, fn func() error) error {
	stageStart := o.clock.Now()
	err := o.monitor.Scope(name, fn)
	*trace = append(*trace, checkpoint.ClaimCheckpoint{
		Name:     name,
		Duration: o.clock.Now().Sub(stageStart),
		Success:  err == nil,
	})
	return err
}

// runSearches executes all derived queries concurrently, plus dedicated
// tier-1 domain searches for medical and scientific claims.
func (o *Orchestrator) runSearches(ctx context.Context, claim claims.Claim, queries []string) []claims.SearchResponse {
	all := make([]string, 0, len(queries)+3)
	all = append(all, queries...)
	if len(queries) > 0 &&
		(claim.Type == claims.ClaimTypeMedical || claim.Type == claims.ClaimTypeScientific) {
		scoped := truncate(queries[0], 50)
		for _, domain := range tier1Domains[:3] {
			all = append(all, fmt.Sprintf("site:%s %s", domain, scoped))
		}
	}

	responses := make([]claims.SearchResponse, len(all))
	var wg sync.WaitGroup
	for i, query := range all {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			responses[i] = o.searcher.Search(ctx, query, o.cfg.MaxResultsPerQuery)
		}(i, query)
	}
	wg.Wait()

	if o.tracker != nil {
		for _, query := range queries {
			o.tracker.Track("search:"+strings.ToLower(query), string(claim.Type), claim.Keywords)
		}
	}
	return responses
}

// rankSources deduplicates results by URL, attaches credibility scores,
// drops low-credibility domains, and keeps the top sources by
// credibility times relevance.
func (o *Orchestrator) rankSources(responses []claims.SearchResponse) []claims.Source {
	seen := make(map[string]struct{})
	var sources []claims.Source
	for _, resp := range responses {
		for _, result := range resp.Results {
			if result.URL == "" {
				continue
			}
			if _, dup := seen[result.URL]; dup {
				continue
			}
			seen[result.URL] = struct{}{}

			credibility := CredibilityOf(result.Domain)
			if credibility < o.cfg.MinCredibility {
				continue
			}
			sources = append(sources, claims.Source{
				URL:              result.URL,
				Title:            result.Title,
				Content:          result.Snippet,
				RelevanceScore:   result.RelevanceScore,
				CredibilityScore: credibility,
				Domain:           result.Domain,
				PublicationDate:  result.PublicationDate,
			})
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].CredibilityScore*sources[i].RelevanceScore >
			sources[j].CredibilityScore*sources[j].RelevanceScore
	})
	if len(sources) > o.cfg.MaxSources {
		sources = sources[:o.cfg.MaxSources]
	}
	return sources
}

// populateContent extracts article text for every source under the
// shared fetch bound and a stage-wide deadline. A failed or timed-out
// extraction keeps the search snippet already present as a fallback.
func (o *Orchestrator) populateContent(ctx context.Context, claim claims.Claim, sources []claims.Source) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.MaxExtractionTime)
	defer cancel()

	var wg sync.WaitGroup
	for i := range sources {
		wg.Add(1)
		go func(src *claims.Source) {
			defer wg.Done()
			select {
			case o.fetchSlots <- struct{}{}:
				defer func() { <-o.fetchSlots }()
			case <-ctx.Done():
				return
			}
			res := o.extractor.Extract(ctx, src.URL, hintFor(claim.Type))
			if res.Success {
				src.Content = res.Content
			}
		}(&sources[i])
	}
	wg.Wait()
}

// finish stamps the wall time, records terminal-status metrics, and logs
// the claim's stage trace as a monitor report.
func (o *Orchestrator) finish(start time.Time, trace []checkpoint.ClaimCheckpoint, result claims.VerificationResult) claims.VerificationResult {
	result.ProcessingTime = o.clock.Now().Sub(start)
	metrics.ObserveClaim(string(result.Status), result.ProcessingTime)
	o.monitor.AddReport(result.ClaimID, result.Claim.Text, string(result.Claim.Type),
		trace, result.Status != claims.StatusErrored)
	return result
}

func (o *Orchestrator) erroredResult(id string, claim claims.Claim, msg string) claims.VerificationResult {
	return claims.VerificationResult{
		ClaimID:   id,
		Claim:     claim,
		Status:    claims.StatusErrored,
		ErrorText: msg,
	}
}

// hintFor maps a claim type to a content selector category.
func hintFor(t claims.ClaimType) string {
	switch t {
	case claims.ClaimTypeMedical:
		return "medical"
	case claims.ClaimTypeScientific:
		return "academic"
	case claims.ClaimTypePolitical:
		return "news"
	default:
		return "general"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
