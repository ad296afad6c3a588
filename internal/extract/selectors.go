package extract

import "strings"

// contentSelectors are tried in order per page category; the first
// selector yielding enough text wins.
var contentSelectors = map[string][]string{
	"news": {
		"article", ".article-content", ".entry-content", ".post-content",
		".story-body", ".article-body", ".content-body", `[class*="article"]`,
		".main-content", "main", ".primary-content", ".story-content",
	},
	"academic": {
		".abstract", ".article-content", ".full-text", ".paper-content",
		".document-content", ".publication-content", "article", "main",
	},
	"medical": {
		".medical-content", ".health-content", ".article-content", "article",
		".content-area", ".main-content", "main", ".primary-content",
	},
	"government": {
		".content", ".main-content", ".page-content", ".document-content",
		"article", "main", ".body-content", ".text-content",
	},
	"general": {
		"article", ".content", ".main-content", ".post-content",
		".entry-content", "main", ".primary-content", ".body-content",
	},
}

// domainSelectors override the category lists for hosts whose markup is
// known. They are tried before the category set so a matching site gets
// its hand-tuned selectors first.
var domainSelectors = map[string][]string{
	"reuters.com": {
		`[data-testid="ArticleBody"]`, ".article-body__content", ".StandardArticleBody_body",
	},
	"apnews.com": {
		".RichTextStoryBody", ".Article", `[data-key="article"]`,
	},
	"bbc.com": {
		`[data-component="text-block"]`, ".story-body__inner", "article",
	},
	"npr.org": {
		"#storytext", ".storytext", "article",
	},
	"cnn.com": {
		".article__content", `[itemprop="articleBody"]`, ".zn-body__paragraph",
	},
	"theguardian.com": {
		`[data-gu-name="body"]`, ".article-body-commercial-selector", ".content__article-body",
	},
}

// selectorOverridesFor returns the hand-tuned selectors for a domain,
// walking up parent domains so "edition.cnn.com" matches cnn.com. Nil
// when the domain has no overrides.
func selectorOverridesFor(domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if sel, ok := domainSelectors[domain]; ok {
		return sel
	}
	for candidate := domain; ; {
		idx := strings.Index(candidate, ".")
		if idx < 0 {
			break
		}
		candidate = candidate[idx+1:]
		if sel, ok := domainSelectors[candidate]; ok {
			return sel
		}
	}
	return nil
}

// domainCategories pins well-known hosts to a selector category.
// TLD entries ("gov", "edu") catch whole namespaces.
var domainCategories = map[string]string{
	"reuters.com":      "news",
	"apnews.com":       "news",
	"bbc.com":          "news",
	"npr.org":          "news",
	"cnn.com":          "news",
	"who.int":          "medical",
	"cdc.gov":          "medical",
	"nih.gov":          "medical",
	"nature.com":       "academic",
	"science.org":      "academic",
	"ncbi.nlm.nih.gov": "academic",
	"gov":              "government",
	"edu":              "academic",
}

// categoryFor resolves the selector category for a domain; hint is used
// when the domain is unknown, and "general" is the final fallback.
func categoryFor(domain, hint string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if cat, ok := domainCategories[domain]; ok {
		return cat
	}
	for candidate := domain; ; {
		idx := strings.Index(candidate, ".")
		if idx < 0 {
			break
		}
		candidate = candidate[idx+1:]
		if cat, ok := domainCategories[candidate]; ok {
			return cat
		}
	}
	if _, ok := contentSelectors[hint]; ok {
		return hint
	}
	return "general"
}

// selectorsFor returns the selector list for a category, defaulting to
// the general set.
func selectorsFor(category string) []string {
	if sel, ok := contentSelectors[category]; ok {
		return sel
	}
	return contentSelectors["general"]
}

// selectorsForPage combines a domain's hand-tuned overrides (first) with
// its category selector list.
func selectorsForPage(domain, category string) []string {
	overrides := selectorOverridesFor(domain)
	base := selectorsFor(category)
	out := make([]string, 0, len(overrides)+len(base))
	out = append(out, overrides...)
	return append(out, base...)
}
