package verify

import (
	"context"
	"fmt"

	"github.com/claimsift/claimsift/internal/claims"
)

// Authenticity levels in descending order of confidence.
const (
	LevelVerified          = "verified"
	LevelPartiallyVerified = "partially_verified"
	LevelDisputed          = "disputed"
	LevelLikelyFalse       = "likely_false"
	LevelUnverified        = "unverified"
)

// officialDomains earn a scoring bonus when they contribute evidence.
var officialDomains = map[string]struct{}{
	"sec.gov": {},
	"who.int": {},
	"cdc.gov": {},
	"gov.uk":  {},
	"nih.gov": {},
}

// HeuristicScorer combines source credibility, evidence weight, and
// contradiction penalties into an authenticity verdict.
type HeuristicScorer struct{}

// NewHeuristicScorer builds the default scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score computes the verdict. The components: 40% average source
// credibility, up to 50% weighted evidence, a cross-reference bonus for
// multiple sources, an official-source bonus, minus up to 40% for
// meaningful contradictions.
func (s *HeuristicScorer) Score(_ context.Context, _ claims.Claim, sources []claims.Source, evidence, contradictions []claims.EvidenceItem) (claims.AuthenticityVerdict, error) {
	if len(sources) == 0 {
		return claims.AuthenticityVerdict{
			Level:       LevelUnverified,
			Explanation: "no sources available",
		}, nil
	}

	var credSum float64
	for _, src := range sources {
		credSum += src.CredibilityScore
	}
	baseScore := credSum / float64(len(sources)) * 0.4

	evidenceScore := 0.0
	if len(evidence) > 0 {
		var weightSum float64
		for _, e := range evidence {
			weight := e.RelevanceScore * e.SourceCredibility
			if e.RelevanceScore > 0.6 {
				weight += 0.1
			}
			weightSum += weight
		}
		evidenceScore = weightSum / float64(len(evidence)) * 0.5
		if evidenceScore > 0.5 {
			evidenceScore = 0.5
		}
	}

	contradictionPenalty := 0.0
	meaningful := 0
	var penaltySum float64
	for _, c := range contradictions {
		if c.RelevanceScore <= 0.4 {
			continue
		}
		meaningful++
		penaltySum += c.RelevanceScore * c.SourceCredibility
	}
	if meaningful > 0 {
		contradictionPenalty = penaltySum / float64(meaningful) * 0.4
		if contradictionPenalty > 0.4 {
			contradictionPenalty = 0.4
		}
	}

	crossReferenceBonus := 0.0
	switch {
	case len(sources) >= 3:
		crossReferenceBonus = float64(len(sources)) * 0.03
		if crossReferenceBonus > 0.15 {
			crossReferenceBonus = 0.15
		}
	case len(sources) == 2:
		crossReferenceBonus = 0.05
	}

	officialBonus := 0.0
	if len(evidence) > 0 {
		for _, src := range sources {
			if _, ok := officialDomains[src.Domain]; ok {
				officialBonus = 0.1
				break
			}
		}
	}

	score := baseScore + evidenceScore + crossReferenceBonus + officialBonus - contradictionPenalty
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	level := levelFor(score, len(evidence), meaningful)
	return claims.AuthenticityVerdict{
		Score: score,
		Level: level,
		Explanation: fmt.Sprintf(
			"%d sources (avg credibility %.2f), %d evidence items, %d meaningful contradictions",
			len(sources), credSum/float64(len(sources)), len(evidence), meaningful),
	}, nil
}

func levelFor(score float64, evidenceCount, contradictionCount int) string {
	switch {
	case score >= 0.8 && evidenceCount > 0 && contradictionCount == 0:
		return LevelVerified
	case score >= 0.6 && evidenceCount > 0:
		return LevelPartiallyVerified
	case contradictionCount > 0 && score < 0.4:
		return LevelDisputed
	case score < 0.3:
		return LevelLikelyFalse
	default:
		return LevelUnverified
	}
}
