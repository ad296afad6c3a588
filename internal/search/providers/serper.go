// Package providers contains the concrete web search backends routed by
// the search package. Every provider maps transport failures, rate
// limiting, and bad payloads onto the search package's error classes so
// the router can decide between retry and failover.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/search"
)

const serperEndpoint = "https://google.serper.dev/search"

// Serper queries the serper.dev Google wrapper. Requires an API key.
type Serper struct {
	apiKey   string
	client   *http.Client
	endpoint string
}

// NewSerper builds a Serper provider. A nil client gets a 15s-timeout
// default.
func NewSerper(apiKey string, client *http.Client) *Serper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Serper{apiKey: apiKey, client: client, endpoint: serperEndpoint}
}

func (s *Serper) Name() string { return "serper" }

func (s *Serper) Search(ctx context.Context, query string, maxResults int) ([]claims.SearchResult, error) {
	payload, err := json.Marshal(map[string]any{"q": query, "num": maxResults})
	if err != nil {
		return nil, &search.ProviderError{Provider: s.Name(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &search.ProviderError{Provider: s.Name(), Err: err}
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &search.NetworkError{Provider: s.Name(), Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(s.Name(), resp.StatusCode); err != nil {
		return nil, err
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
			Date    string `json:"date"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &search.ProviderError{Provider: s.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	results := make([]claims.SearchResult, 0, len(raw.Organic))
	for i, item := range raw.Organic {
		if i >= maxResults {
			break
		}
		results = append(results, claims.SearchResult{
			URL:             item.Link,
			Title:           item.Title,
			Snippet:         item.Snippet,
			Domain:          claims.DomainOf(item.Link),
			Provider:        s.Name(),
			RelevanceScore:  providerScore(serperPrior, i),
			PublicationDate: item.Date,
		})
	}
	return results, nil
}

// classifyStatus maps an HTTP status onto the router's error classes.
func classifyStatus(provider string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", provider, search.ErrRateLimited)
	case status >= 500:
		return &search.NetworkError{Provider: provider, Err: fmt.Errorf("status %d", status)}
	default:
		return &search.ProviderError{Provider: provider, StatusCode: status, Err: fmt.Errorf("unexpected status")}
	}
}

// Per-provider quality priors: paid API backends rank above the free
// HTML scrape at equal positions.
const (
	serperPrior     = 0.8
	bravePrior      = 0.75
	duckduckgoPrior = 0.6
)

// providerScore decays relevance with result rank under the provider's
// quality prior, floored at 40% of the prior.
func providerScore(prior float64, rank int) float64 {
	score := prior - float64(rank)*0.05
	if floor := prior * 0.4; score < floor {
		return floor
	}
	return score
}
