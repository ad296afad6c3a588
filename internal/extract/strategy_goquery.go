package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/claimsift/claimsift/internal/claims"
)

// SelectorStrategy fetches a page over HTTP and pulls text out of the
// category's CSS selectors, first match with enough text wins. The
// retrying client absorbs transient fetch failures without involving the
// engine.
type SelectorStrategy struct {
	client    *retryablehttp.Client
	userAgent string
	minLength int
}

// NewSelectorStrategy builds the selector strategy. A nil client gets a
// quiet retryable default with two retries.
func NewSelectorStrategy(client *retryablehttp.Client, userAgent string, minLength int) *SelectorStrategy {
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 2
		client.RetryWaitMin = 200 * time.Millisecond
		client.RetryWaitMax = 2 * time.Second
		client.HTTPClient.Timeout = 15 * time.Second
		client.Logger = nil
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if minLength <= 0 {
		minLength = defaultMinContentLength
	}
	return &SelectorStrategy{client: client, userAgent: userAgent, minLength: minLength}
}

func (s *SelectorStrategy) Name() string { return "selector" }

func (s *SelectorStrategy) Priority() int { return prioritySelector }

func (s *SelectorStrategy) Extract(ctx context.Context, url, category string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, nav, header, footer, aside").Remove()

	for _, selector := range selectorsForPage(claims.DomainOf(url), category) {
		text := collapseWhitespace(doc.Find(selector).Text())
		if len(text) >= s.minLength {
			return text, nil
		}
	}
	// Last resort: whole body.
	text := collapseWhitespace(doc.Find("body").Text())
	if len(text) >= s.minLength {
		return text, nil
	}
	return "", fmt.Errorf("no selector produced enough text")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
