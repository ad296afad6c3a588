// Package claims defines core types shared across the verification pipeline.
package claims

import (
	"time"
)

// ClaimType classifies a claim for query shaping and source selection.
type ClaimType string

// Claim type values supplied by the external extraction step.
const (
	ClaimTypePolitical   ClaimType = "political"
	ClaimTypeMedical     ClaimType = "medical"
	ClaimTypeScientific  ClaimType = "scientific"
	ClaimTypeFinancial   ClaimType = "financial"
	ClaimTypeStatistical ClaimType = "statistical"
	ClaimTypeGeneral     ClaimType = "general"
)

// Claim is a short factual assertion produced by an external extractor.
// The pipeline only reads these fields; it never mutates a Claim.
type Claim struct {
	Text     string    `json:"text"`
	Type     ClaimType `json:"type"`
	Keywords []string  `json:"keywords"`
	Entities []string  `json:"entities"`
	Priority int       `json:"priority"`
}

// SearchResult is one candidate source returned by a provider. Immutable
// once constructed.
type SearchResult struct {
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Snippet         string  `json:"snippet"`
	Domain          string  `json:"domain"`
	Provider        string  `json:"provider"`
	RelevanceScore  float64 `json:"relevance_score"`
	PublicationDate string  `json:"publication_date,omitempty"`
}

// SearchResponse wraps the results of one router search call.
type SearchResponse struct {
	Results        []SearchResult `json:"results"`
	ProviderUsed   string         `json:"provider_used"`
	Query          string         `json:"query"`
	TotalResults   int            `json:"total_results"`
	ProcessingTime time.Duration  `json:"processing_time_ms"`
	CacheHit       bool           `json:"cache_hit"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// ExtractionResult is the outcome of one content extraction attempt.
type ExtractionResult struct {
	Content  string        `json:"content"`
	Method   string        `json:"method"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration_ms"`
	Error    string        `json:"error,omitempty"`
}

// Source is a web page merged with its search metadata and credibility
// rating, ready for evidence analysis.
type Source struct {
	URL              string  `json:"url"`
	Title            string  `json:"title"`
	Content          string  `json:"content"`
	RelevanceScore   float64 `json:"relevance_score"`
	CredibilityScore float64 `json:"credibility_score"`
	Domain           string  `json:"domain"`
	PublicationDate  string  `json:"publication_date,omitempty"`
}

// EvidenceItem is a sentence-level match produced by the external analyzer.
type EvidenceItem struct {
	Sentence          string  `json:"sentence"`
	SourceURL         string  `json:"source_url"`
	SourceDomain      string  `json:"source_domain"`
	SourceCredibility float64 `json:"source_credibility"`
	RelevanceScore    float64 `json:"relevance_score"`
}

// AuthenticityVerdict is the scoring collaborator's output attached to a
// compiled result.
type AuthenticityVerdict struct {
	Score       float64 `json:"score"`
	Level       string  `json:"level"`
	Explanation string  `json:"explanation"`
}

// VerificationStatus is the lifecycle state of a claim pipeline.
type VerificationStatus string

// Status values; Compiled, Unverified and Errored are terminal.
const (
	StatusQueued              VerificationStatus = "queued"
	StatusSearchingSources    VerificationStatus = "searching_sources"
	StatusExtractingContent   VerificationStatus = "extracting_content"
	StatusAnalyzingEvidence   VerificationStatus = "analyzing_evidence"
	StatusScoringAuthenticity VerificationStatus = "scoring_authenticity"
	StatusCompiled            VerificationStatus = "compiled"
	StatusUnverified          VerificationStatus = "unverified"
	StatusErrored             VerificationStatus = "errored"
)

// Terminal reports whether the status ends a claim's pipeline.
func (s VerificationStatus) Terminal() bool {
	switch s {
	case StatusCompiled, StatusUnverified, StatusErrored:
		return true
	}
	return false
}

// VerificationResult is the per-claim record handed to callers. Exactly one
// is produced per submitted claim, regardless of upstream failures.
type VerificationResult struct {
	ClaimID        string              `json:"claim_id"`
	Claim          Claim               `json:"claim"`
	Status         VerificationStatus  `json:"status"`
	Sources        []Source            `json:"sources_checked"`
	Evidence       []EvidenceItem      `json:"evidence"`
	Contradictions []EvidenceItem      `json:"contradictions"`
	Verdict        AuthenticityVerdict `json:"verdict"`
	ProcessingTime time.Duration       `json:"processing_time_ms"`
	ErrorText      string              `json:"error_text,omitempty"`
}
