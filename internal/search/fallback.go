package search

import (
	"strings"

	"github.com/claimsift/claimsift/internal/claims"
)

// ProviderCurated identifies results served from the curated fallback
// tables when every live provider is down.
const ProviderCurated = "curated_fallback"

type topicFallback struct {
	terms   []string
	results []claims.SearchResult
}

// curatedFallbacks map query topics to hand-picked reference sites.
// First matching topic wins; an unmatched query gets nothing.
var curatedFallbacks = []topicFallback{
	{
		terms: []string{"fact check", "verify", "truth", "false", "misinformation"},
		results: []claims.SearchResult{
			{
				URL:            "https://www.snopes.com",
				Title:          "Snopes.com - Fact Checking",
				Snippet:        "The definitive Internet reference source for urban legends, folklore, myths, rumors, and misinformation.",
				Domain:         "snopes.com",
				Provider:       ProviderCurated,
				RelevanceScore: 0.8,
			},
			{
				URL:            "https://www.factcheck.org",
				Title:          "FactCheck.org - A Project of The Annenberg Public Policy Center",
				Snippet:        "We are a nonpartisan, nonprofit consumer advocate for voters that aims to reduce the level of deception and confusion in U.S. politics.",
				Domain:         "factcheck.org",
				Provider:       ProviderCurated,
				RelevanceScore: 0.8,
			},
			{
				URL:            "https://www.politifact.com",
				Title:          "PolitiFact | The Poynter Institute",
				Snippet:        "PolitiFact is a fact-checking website that rates the accuracy of claims by elected officials and others on its Truth-O-Meter.",
				Domain:         "politifact.com",
				Provider:       ProviderCurated,
				RelevanceScore: 0.7,
			},
		},
	},
	{
		terms: []string{"news", "current", "today", "latest"},
		results: []claims.SearchResult{
			{
				URL:            "https://www.reuters.com",
				Title:          "Reuters - Breaking International News & Views",
				Snippet:        "Reuters.com brings you the latest news from around the world, covering breaking news in business, politics, and more.",
				Domain:         "reuters.com",
				Provider:       ProviderCurated,
				RelevanceScore: 0.8,
			},
			{
				URL:            "https://apnews.com",
				Title:          "Associated Press News",
				Snippet:        "The Associated Press is an independent global news organization dedicated to factual reporting.",
				Domain:         "apnews.com",
				Provider:       ProviderCurated,
				RelevanceScore: 0.8,
			},
			{
				URL:            "https://www.bbc.com/news",
				Title:          "BBC News - Home",
				Snippet:        "Visit BBC News for up-to-the-minute news, breaking news, video, audio and feature stories.",
				Domain:         "bbc.com",
				Provider:       ProviderCurated,
				RelevanceScore: 0.7,
			},
		},
	},
	{
		terms: []string{"research", "study", "scientific", "science", "medical"},
		results: []claims.SearchResult{
			{
				URL:            "https://www.ncbi.nlm.nih.gov/pubmed",
				Title:          "PubMed - NCBI",
				Snippet:        "PubMed comprises more than 34 million citations for biomedical literature from MEDLINE, life science journals, and online books.",
				Domain:         "ncbi.nlm.nih.gov",
				Provider:       ProviderCurated,
				RelevanceScore: 0.8,
			},
			{
				URL:            "https://scholar.google.com",
				Title:          "Google Scholar",
				Snippet:        "Google Scholar provides a simple way to broadly search for scholarly literature across many disciplines and sources.",
				Domain:         "scholar.google.com",
				Provider:       ProviderCurated,
				RelevanceScore: 0.7,
			},
		},
	},
}

// curatedResults returns up to maxResults hand-picked sources for the
// query's topic, or nil if no topic matches.
func curatedResults(query string, maxResults int) []claims.SearchResult {
	q := strings.ToLower(query)
	for _, topic := range curatedFallbacks {
		for _, term := range topic.terms {
			if strings.Contains(q, term) {
				results := topic.results
				if maxResults > 0 && len(results) > maxResults {
					results = results[:maxResults]
				}
				out := make([]claims.SearchResult, len(results))
				copy(out, results)
				return out
			}
		}
	}
	return nil
}
