package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/claimsift/claimsift/internal/claims"
)

func highCredSources(n int) []claims.Source {
	out := make([]claims.Source, n)
	for i := range out {
		out[i] = claims.Source{Domain: "reuters.com", CredibilityScore: 0.98, RelevanceScore: 0.9}
	}
	return out
}

func strongEvidence(n int) []claims.EvidenceItem {
	out := make([]claims.EvidenceItem, n)
	for i := range out {
		out[i] = claims.EvidenceItem{RelevanceScore: 0.9, SourceCredibility: 0.95}
	}
	return out
}

func TestHeuristicScorer_NoSources(t *testing.T) {
	s := NewHeuristicScorer()

	verdict, err := s.Score(context.Background(), claims.Claim{}, nil, nil, nil)

	require.NoError(t, err)
	require.Zero(t, verdict.Score)
	require.Equal(t, LevelUnverified, verdict.Level)
}

func TestHeuristicScorer_VerifiedWithStrongEvidence(t *testing.T) {
	s := NewHeuristicScorer()

	verdict, err := s.Score(context.Background(), claims.Claim{}, highCredSources(4), strongEvidence(3), nil)

	require.NoError(t, err)
	require.GreaterOrEqual(t, verdict.Score, 0.8)
	require.Equal(t, LevelVerified, verdict.Level)
}

func TestHeuristicScorer_ContradictionsLowerScore(t *testing.T) {
	s := NewHeuristicScorer()
	contradictions := []claims.EvidenceItem{
		{RelevanceScore: 0.9, SourceCredibility: 0.95},
	}

	clean, err := s.Score(context.Background(), claims.Claim{}, highCredSources(3), strongEvidence(2), nil)
	require.NoError(t, err)
	disputed, err := s.Score(context.Background(), claims.Claim{}, highCredSources(3), strongEvidence(2), contradictions)
	require.NoError(t, err)

	require.Less(t, disputed.Score, clean.Score)
}

func TestHeuristicScorer_WeakContradictionsIgnored(t *testing.T) {
	s := NewHeuristicScorer()
	weak := []claims.EvidenceItem{{RelevanceScore: 0.2, SourceCredibility: 0.9}}

	clean, err := s.Score(context.Background(), claims.Claim{}, highCredSources(3), strongEvidence(2), nil)
	require.NoError(t, err)
	withWeak, err := s.Score(context.Background(), claims.Claim{}, highCredSources(3), strongEvidence(2), weak)
	require.NoError(t, err)

	require.Equal(t, clean.Score, withWeak.Score)
}

func TestHeuristicScorer_DisputedLevel(t *testing.T) {
	s := NewHeuristicScorer()
	sources := []claims.Source{{Domain: "example.com", CredibilityScore: 0.4}}
	contradictions := []claims.EvidenceItem{
		{RelevanceScore: 0.9, SourceCredibility: 0.95},
		{RelevanceScore: 0.8, SourceCredibility: 0.9},
	}

	verdict, err := s.Score(context.Background(), claims.Claim{}, sources, nil, contradictions)

	require.NoError(t, err)
	require.Less(t, verdict.Score, 0.4)
	require.Equal(t, LevelDisputed, verdict.Level)
}

func TestHeuristicScorer_OfficialSourceBonus(t *testing.T) {
	s := NewHeuristicScorer()
	plain := []claims.Source{{Domain: "example.org", CredibilityScore: 0.7}}
	official := []claims.Source{{Domain: "cdc.gov", CredibilityScore: 0.7}}
	evidence := strongEvidence(1)

	without, err := s.Score(context.Background(), claims.Claim{}, plain, evidence, nil)
	require.NoError(t, err)
	with, err := s.Score(context.Background(), claims.Claim{}, official, evidence, nil)
	require.NoError(t, err)

	require.InDelta(t, 0.1, with.Score-without.Score, 0.0001)
}

func TestHeuristicScorer_ScoreClamped(t *testing.T) {
	s := NewHeuristicScorer()

	verdict, err := s.Score(context.Background(), claims.Claim{}, highCredSources(10), strongEvidence(10), nil)

	require.NoError(t, err)
	require.LessOrEqual(t, verdict.Score, 1.0)
	require.GreaterOrEqual(t, verdict.Score, 0.0)
}
