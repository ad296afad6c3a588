package extract

import "strings"

// DefaultBlockedDomains lists hosts that consistently waste extraction
// time: hard paywalls, login-walled social media, and restricted archives.
var DefaultBlockedDomains = []string{
	// Financial paywalls
	"bloomberg.com", "wsj.com", "ft.com", "economist.com",
	"marketwatch.com", "barrons.com", "bloomberg.co.uk",

	// News paywalls
	"nytimes.com", "washingtonpost.com", "newyorker.com",
	"theatlantic.com", "slate.com", "salon.com",
	"thedailybeast.com", "vanityfair.com",

	// Tech paywalls
	"wired.com", "techcrunch.com", "arstechnica.com",
	"theverge.com", "engadget.com", "gizmodo.com",

	// Academic publishers behind access walls
	"scholar.google.com", "patents.google.com",
	"jstor.org", "springer.com", "elsevier.com",
	"wiley.com", "tandfonline.com", "sagepub.com",

	// Social media
	"twitter.com", "facebook.com", "instagram.com",
	"tiktok.com", "linkedin.com", "reddit.com",

	// Low extraction value
	"medium.com", "substack.com", "quora.com", "stackoverflow.com",
}

// Blocklist matches hosts against exact entries and suffix wildcards
// ("*.example.com" or ".example.com"). A nil Blocklist blocks nothing.
type Blocklist struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewBlocklist compiles domain patterns. Subdomains of an exact entry are
// blocked too, so "wsj.com" covers "www.wsj.com".
func NewBlocklist(patterns []string) *Blocklist {
	b := &Blocklist{exact: make(map[string]struct{})}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		if value == "" {
			continue
		}
		switch {
		case strings.HasPrefix(value, "*."):
			b.addSuffix(strings.TrimPrefix(value, "*."))
		case strings.HasPrefix(value, "."):
			b.addSuffix(strings.TrimPrefix(value, "."))
		default:
			b.exact[value] = struct{}{}
		}
	}
	if len(b.exact) == 0 && len(b.suffixes) == 0 {
		return nil
	}
	return b
}

func (b *Blocklist) addSuffix(suffix string) {
	if suffix == "" {
		return
	}
	for _, existing := range b.suffixes {
		if existing == suffix {
			return
		}
	}
	b.suffixes = append(b.suffixes, suffix)
}

// IsBlocked reports whether host (or a parent domain of it) is listed.
func (b *Blocklist) IsBlocked(host string) bool {
	if b == nil {
		return false
	}
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return false
	}
	if _, ok := b.exact[host]; ok {
		return true
	}
	for candidate := host; ; {
		idx := strings.Index(candidate, ".")
		if idx < 0 {
			break
		}
		candidate = candidate[idx+1:]
		if _, ok := b.exact[candidate]; ok {
			return true
		}
	}
	for _, suffix := range b.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
