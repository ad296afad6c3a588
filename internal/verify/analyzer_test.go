package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/claimsift/claimsift/internal/claims"
)

func testClaim() claims.Claim {
	return claims.Claim{
		Text:     "The vaccine reduced hospitalizations by 90 percent",
		Type:     claims.ClaimTypeMedical,
		Keywords: []string{"vaccine", "hospitalizations"},
	}
}

func sourceWith(content string) claims.Source {
	return claims.Source{
		URL:              "https://www.reuters.com/health/x",
		Domain:           "reuters.com",
		CredibilityScore: 0.98,
		RelevanceScore:   0.9,
		Content:          content,
	}
}

func TestHeuristicAnalyzer_FindsSupportingEvidence(t *testing.T) {
	a := NewHeuristicAnalyzer(nil)
	content := "A large study found the vaccine cut hospitalizations sharply across every region surveyed. " +
		"Unrelated filler sentence about the weather that matches nothing at all here."

	evidence, contradictions, err := a.Analyze(context.Background(), testClaim(), []claims.Source{sourceWith(content)})

	require.NoError(t, err)
	require.Len(t, evidence, 1)
	require.Empty(t, contradictions)
	require.Contains(t, evidence[0].Sentence, "cut hospitalizations")
	require.Equal(t, "reuters.com", evidence[0].SourceDomain)
	require.Equal(t, 1.0, evidence[0].RelevanceScore, "both claim terms matched")
}

func TestHeuristicAnalyzer_FlagsContradictoryLanguage(t *testing.T) {
	a := NewHeuristicAnalyzer(nil)
	content := "Officials said the claim about the vaccine was false and contradicts the available hospital data."

	evidence, contradictions, err := a.Analyze(context.Background(), testClaim(), []claims.Source{sourceWith(content)})

	require.NoError(t, err)
	require.Empty(t, evidence)
	require.Len(t, contradictions, 1)
}

func TestHeuristicAnalyzer_NumericalConflictBecomesContradiction(t *testing.T) {
	a := NewHeuristicAnalyzer(nil)
	claim := claims.Claim{
		Text:     "Registration number 12345678 belongs to the firm",
		Keywords: []string{"registration", "firm"},
	}
	content := "Records confirmed the registration for the firm is listed under number 99990000 in the official filing."

	evidence, contradictions, err := a.Analyze(context.Background(), claim, []claims.Source{sourceWith(content)})

	require.NoError(t, err)
	require.Empty(t, evidence)
	require.Len(t, contradictions, 1)
}

func TestHeuristicAnalyzer_IgnoresShortAndIrrelevantContent(t *testing.T) {
	a := NewHeuristicAnalyzer(nil)

	evidence, contradictions, err := a.Analyze(context.Background(), testClaim(), []claims.Source{
		sourceWith("tiny"),
		sourceWith("A long sentence about cooking pasta that has nothing to do with the topic at hand whatsoever."),
	})

	require.NoError(t, err)
	require.Empty(t, evidence)
	require.Empty(t, contradictions)
}

func TestHeuristicAnalyzer_NoTermsNoWork(t *testing.T) {
	a := NewHeuristicAnalyzer(nil)

	evidence, contradictions, err := a.Analyze(context.Background(), claims.Claim{Text: "bare claim"}, []claims.Source{
		sourceWith("Any content at all, long enough to be considered a sentence for analysis purposes."),
	})

	require.NoError(t, err)
	require.Empty(t, evidence)
	require.Empty(t, contradictions)
}

func TestHeuristicAnalyzer_CapsTotals(t *testing.T) {
	a := NewHeuristicAnalyzer(nil)
	content := ""
	for i := 0; i < 30; i++ {
		content += "Research shows the vaccine reduced hospitalizations in a different region of the country. "
	}
	sources := make([]claims.Source, 10)
	for i := range sources {
		sources[i] = sourceWith(content)
	}

	evidence, _, err := a.Analyze(context.Background(), testClaim(), sources)

	require.NoError(t, err)
	require.LessOrEqual(t, len(evidence), maxEvidenceTotal)
}
