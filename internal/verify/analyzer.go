package verify

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/claims"
)

const (
	analyzerContentWindow  = 2000
	analyzerSentenceLimit  = 20
	minSentenceLength      = 30
	maxEvidencePerSource   = 2
	maxEvidenceTotal       = 10
	maxContradictionsTotal = 5
)

var supportingIndicators = []string{
	"according to", "research shows", "confirmed", "verified",
	"data shows", "study found", "evidence indicates", "reports show",
}

var contradictoryIndicators = []string{
	"however", "but", "not", "false", "disputed", "contradicts",
	"denies", "refutes", "opposite", "wrong", "incorrect", "misleading",
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
)

// HeuristicAnalyzer extracts sentence-level evidence by keyword matching
// against source content. It is deliberately cheap: no model calls, just
// term overlap plus supporting/contradictory language cues.
type HeuristicAnalyzer struct {
	logger *zap.Logger
}

// NewHeuristicAnalyzer builds the default evidence analyzer.
func NewHeuristicAnalyzer(logger *zap.Logger) *HeuristicAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeuristicAnalyzer{logger: logger.Named("analyzer")}
}

// Analyze scans every source for sentences that support or contradict
// the claim. Results are ranked by relevance times source credibility
// and capped.
func (a *HeuristicAnalyzer) Analyze(ctx context.Context, claim claims.Claim, sources []claims.Source) ([]claims.EvidenceItem, []claims.EvidenceItem, error) {
	keywords := claimTerms(claim)
	if len(keywords) == 0 {
		return nil, nil, nil
	}

	var evidence, contradictions []claims.EvidenceItem
	for _, source := range sources {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		ev, contra := a.analyzeSource(claim, source, keywords)
		evidence = append(evidence, ev...)
		contradictions = append(contradictions, contra...)
	}

	rankEvidence(evidence)
	rankEvidence(contradictions)
	if len(evidence) > maxEvidenceTotal {
		evidence = evidence[:maxEvidenceTotal]
	}
	if len(contradictions) > maxContradictionsTotal {
		contradictions = contradictions[:maxContradictionsTotal]
	}
	return evidence, contradictions, nil
}

func (a *HeuristicAnalyzer) analyzeSource(claim claims.Claim, source claims.Source, keywords []string) (evidence, contradictions []claims.EvidenceItem) {
	content := source.Content
	if len(content) < minSentenceLength {
		return nil, nil
	}
	if len(content) > analyzerContentWindow {
		content = content[:analyzerContentWindow]
	}
	claimNumbers := longNumbers(numberPattern.FindAllString(claim.Text, -1))

	sentences := sentenceSplit.Split(content, -1)
	if len(sentences) > analyzerSentenceLimit {
		sentences = sentences[:analyzerSentenceLimit]
	}
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLength {
			continue
		}
		lower := strings.ToLower(sentence)

		matches := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		item := claims.EvidenceItem{
			Sentence:          sentence,
			SourceURL:         source.URL,
			SourceDomain:      source.Domain,
			SourceCredibility: source.CredibilityScore,
			RelevanceScore:    float64(matches) / float64(len(keywords)),
		}

		if containsAny(lower, contradictoryIndicators) {
			contradictions = append(contradictions, item)
			continue
		}

		if matches >= 2 || containsAny(lower, supportingIndicators) {
			// A sentence citing a different long number than the claim
			// disputes it rather than supporting it.
			if num, conflicting := conflictingNumber(claimNumbers, sentence); conflicting {
				a.logger.Debug("numerical conflict treated as contradiction",
					zap.String("claimed", strings.Join(claimNumbers, ",")),
					zap.String("found", num))
				contradictions = append(contradictions, item)
				continue
			}
			if len(evidence) < maxEvidencePerSource {
				evidence = append(evidence, item)
			}
		}
	}
	return evidence, contradictions
}

// claimTerms collects the lowercased match terms: top keywords plus lead
// entities.
func claimTerms(claim claims.Claim) []string {
	var terms []string
	kws := claim.Keywords
	if len(kws) > 3 {
		kws = kws[:3]
	}
	for _, kw := range kws {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			terms = append(terms, kw)
		}
	}
	ents := claim.Entities
	if len(ents) > 2 {
		ents = ents[:2]
	}
	for _, ent := range ents {
		if ent = strings.ToLower(strings.TrimSpace(ent)); ent != "" {
			terms = append(terms, ent)
		}
	}
	return terms
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// longNumbers keeps digit runs of 4+ characters, the ones that look like
// IDs, years, or registration numbers worth exact-matching.
func longNumbers(numbers []string) []string {
	var out []string
	for _, n := range numbers {
		if len(n) >= 4 {
			out = append(out, n)
		}
	}
	return out
}

// conflictingNumber reports whether the sentence cites a long number
// that matches none of the claim's long numbers.
func conflictingNumber(claimNumbers []string, sentence string) (string, bool) {
	if len(claimNumbers) == 0 {
		return "", false
	}
	sentenceNumbers := longNumbers(numberPattern.FindAllString(sentence, -1))
	if len(sentenceNumbers) == 0 {
		return "", false
	}
	for _, sn := range sentenceNumbers {
		matched := false
		for _, cn := range claimNumbers {
			if strings.Contains(sn, cn) || strings.Contains(cn, sn) {
				matched = true
				break
			}
		}
		if !matched {
			return sn, true
		}
	}
	return "", false
}

func rankEvidence(items []claims.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore*items[i].SourceCredibility >
			items[j].RelevanceScore*items[j].SourceCredibility
	})
}
