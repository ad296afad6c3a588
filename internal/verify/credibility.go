package verify

import "strings"

// DefaultMinCredibility is the floor below which sources are discarded
// before evidence analysis.
const DefaultMinCredibility = 0.4

// defaultCredibility applies to domains absent from the table.
const defaultCredibility = 0.5

// tier1Domains get dedicated site-scoped searches for medical and
// scientific claims.
var tier1Domains = []string{
	"reuters.com", "apnews.com", "who.int", "cdc.gov",
	"nih.gov", "nature.com", "science.org", "bbc.com",
}

// domainCredibility rates well-known publishers. Tiers: ultra-premium
// (0.95+), high-quality (0.85-0.94), reliable (0.70-0.84).
var domainCredibility = map[string]float64{
	// Ultra-premium
	"reuters.com":        0.98,
	"apnews.com":         0.97,
	"who.int":            0.96,
	"cdc.gov":            0.96,
	"nih.gov":            0.95,
	"nature.com":         0.95,
	"science.org":        0.95,
	"ncbi.nlm.nih.gov":   0.95,
	"sec.gov":            0.95,
	"federalreserve.gov": 0.95,

	// High-quality
	"bbc.com":        0.92,
	"npr.org":        0.91,
	"pbs.org":        0.90,
	"factcheck.org":  0.90,
	"snopes.com":     0.89,
	"ieee.org":       0.88,
	"politifact.com": 0.87,

	// Reliable
	"mayoclinic.org":       0.83,
	"britannica.com":       0.82,
	"wikipedia.org":        0.80,
	"theguardian.com":      0.80,
	"cnn.com":              0.78,
	"nbcnews.com":          0.78,
	"cbsnews.com":          0.77,
	"abcnews.go.com":       0.77,
	"usatoday.com":         0.75,
	"webmd.com":            0.75,
	"healthline.com":       0.75,
	"medicalnewstoday.com": 0.72,
}

// CredibilityOf rates a domain, walking up parent domains so
// "edition.cnn.com" inherits the cnn.com rating. Unknown domains get the
// neutral default.
func CredibilityOf(domain string) float64 {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return defaultCredibility
	}
	if score, ok := domainCredibility[domain]; ok {
		return score
	}
	for candidate := domain; ; {
		idx := strings.Index(candidate, ".")
		if idx < 0 {
			break
		}
		candidate = candidate[idx+1:]
		if score, ok := domainCredibility[candidate]; ok {
			return score
		}
	}
	return defaultCredibility
}
