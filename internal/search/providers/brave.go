package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/search"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API. Requires a subscription token.
type Brave struct {
	apiKey   string
	client   *http.Client
	endpoint string
}

// NewBrave builds a Brave provider. A nil client gets a 15s-timeout
// default.
func NewBrave(apiKey string, client *http.Client) *Brave {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Brave{apiKey: apiKey, client: client, endpoint: braveEndpoint}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]claims.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", b.endpoint, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &search.ProviderError{Provider: b.Name(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &search.NetworkError{Provider: b.Name(), Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(b.Name(), resp.StatusCode); err != nil {
		return nil, err
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				Age         string `json:"age"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &search.ProviderError{Provider: b.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	results := make([]claims.SearchResult, 0, len(raw.Web.Results))
	for i, item := range raw.Web.Results {
		if i >= maxResults {
			break
		}
		results = append(results, claims.SearchResult{
			URL:             item.URL,
			Title:           item.Title,
			Snippet:         item.Description,
			Domain:          claims.DomainOf(item.URL),
			Provider:        b.Name(),
			RelevanceScore:  providerScore(bravePrior, i),
			PublicationDate: item.Age,
		})
	}
	return results, nil
}
