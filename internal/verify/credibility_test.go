package verify

import "testing"

func TestCredibilityOf(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		want   float64
	}{
		{"ultra premium", "reuters.com", 0.98},
		{"high quality", "snopes.com", 0.89},
		{"reliable", "wikipedia.org", 0.80},
		{"subdomain inherits parent rating", "edition.cnn.com", 0.78},
		{"deep subdomain", "pubmed.ncbi.nlm.nih.gov", 0.95},
		{"unknown domain gets default", "random-blog.example", defaultCredibility},
		{"empty domain gets default", "", defaultCredibility},
		{"case folded", "REUTERS.COM", 0.98},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CredibilityOf(tt.domain); got != tt.want {
				t.Errorf("CredibilityOf(%q) = %v; want %v", tt.domain, got, tt.want)
			}
		})
	}
}

func TestTier1DomainsAreUltraPremium(t *testing.T) {
	for _, domain := range tier1Domains {
		if CredibilityOf(domain) < 0.9 {
			t.Errorf("tier-1 domain %s rated below 0.9", domain)
		}
	}
}
