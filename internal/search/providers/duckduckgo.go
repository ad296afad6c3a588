package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/search"
)

const ddgEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML results page. Needs no API key, so it is
// always configured as the last-resort provider.
type DuckDuckGo struct {
	client    *http.Client
	userAgent string
	endpoint  string
}

// NewDuckDuckGo builds the keyless provider. A nil client gets a
// 15s-timeout default.
func NewDuckDuckGo(client *http.Client, userAgent string) *DuckDuckGo {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; claimsift/1.0)"
	}
	return &DuckDuckGo{client: client, userAgent: userAgent, endpoint: ddgEndpoint}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]claims.SearchResult, error) {
	form := url.Values{"q": {query}, "kl": {"wt-wt"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &search.ProviderError{Provider: d.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &search.NetworkError{Provider: d.Name(), Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(d.Name(), resp.StatusCode); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &search.ProviderError{Provider: d.Name(), Err: fmt.Errorf("parse results page: %w", err)}
	}

	var results []claims.SearchResult
	doc.Find("div.result").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}
		link := sel.Find("a.result__a")
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		resultURL := resolveRedirect(href)
		title := strings.TrimSpace(link.Text())
		if resultURL == "" || title == "" {
			return true
		}
		results = append(results, claims.SearchResult{
			URL:            resultURL,
			Title:          title,
			Snippet:        strings.TrimSpace(sel.Find(".result__snippet").Text()),
			Domain:         claims.DomainOf(resultURL),
			Provider:       d.Name(),
			RelevanceScore: providerScore(duckduckgoPrior, len(results)),
		})
		return true
	})
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links to the
// target URL; plain links pass through.
func resolveRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "" {
		return ""
	}
	return href
}
