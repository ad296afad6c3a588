package claims

import (
	"context"
	"time"
)

// SearchProvider executes a web search against one upstream service.
type SearchProvider interface {
	// Name identifies the provider in health tracking and responses.
	Name() string
	// Search returns up to maxResults results for the query.
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Searcher is the router contract used by the orchestrator. It never
// returns an error; total failure is expressed inside the response.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) SearchResponse
}

// Extractor pulls usable body text from a URL.
type Extractor interface {
	Extract(ctx context.Context, url string, domainHint string) ExtractionResult
}

// EvidenceAnalyzer matches source content against a claim. External
// collaborator; the pipeline only transports its output.
type EvidenceAnalyzer interface {
	Analyze(ctx context.Context, claim Claim, sources []Source) (evidence []EvidenceItem, contradictions []EvidenceItem, err error)
}

// AuthenticityScorer turns gathered evidence into a verdict. External
// collaborator.
type AuthenticityScorer interface {
	Score(ctx context.Context, claim Claim, sources []Source, evidence []EvidenceItem, contradictions []EvidenceItem) (AuthenticityVerdict, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces claim IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
