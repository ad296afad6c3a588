package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityStrategy fetches a page and runs it through the readability
// content scorer, which strips boilerplate far better than raw selectors
// on unfamiliar layouts.
type ReadabilityStrategy struct {
	client    *http.Client
	userAgent string
}

// NewReadabilityStrategy builds the readability strategy. A nil client
// gets a 15s-timeout default.
func NewReadabilityStrategy(client *http.Client, userAgent string) *ReadabilityStrategy {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &ReadabilityStrategy{client: client, userAgent: userAgent}
}

func (r *ReadabilityStrategy) Name() string { return "readability" }

func (r *ReadabilityStrategy) Priority() int { return priorityReadability }

func (r *ReadabilityStrategy) Extract(ctx context.Context, pageURL, _ string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("readability parse: %w", err)
	}
	text := collapseWhitespace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("readability produced no text")
	}
	return text, nil
}
