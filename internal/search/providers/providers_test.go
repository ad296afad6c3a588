package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/claimsift/claimsift/internal/search"
)

func TestSerper_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic": [
				{"title": "First", "link": "https://www.reuters.com/a", "snippet": "one"},
				{"title": "Second", "link": "https://apnews.com/b", "snippet": "two"}
			]
		}`))
	}))
	defer ts.Close()

	p := NewSerper("secret", ts.Client())
	p.endpoint = ts.URL

	results, err := p.Search(context.Background(), "test", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "reuters.com", results[0].Domain)
	require.Equal(t, "serper", results[0].Provider)
	require.Greater(t, results[0].RelevanceScore, results[1].RelevanceScore)
}

func TestSerper_TruncatesToMaxResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"organic": [
			{"title": "a", "link": "https://a.com"},
			{"title": "b", "link": "https://b.com"},
			{"title": "c", "link": "https://c.com"}
		]}`))
	}))
	defer ts.Close()

	p := NewSerper("k", ts.Client())
	p.endpoint = ts.URL

	results, err := p.Search(context.Background(), "test", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestBrave_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "token", r.Header.Get("X-Subscription-Token"))
		require.Equal(t, "test query", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"web": {"results": [
			{"title": "Hit", "url": "https://www.bbc.com/news/x", "description": "desc"}
		]}}`))
	}))
	defer ts.Close()

	p := NewBrave("token", ts.Client())
	p.endpoint = ts.URL

	results, err := p.Search(context.Background(), "test query", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "bbc.com", results[0].Domain)
	require.Equal(t, "desc", results[0].Snippet)
}

func TestDuckDuckGo_Search(t *testing.T) {
	page := `<html><body>
		<div class="result">
			<a class="result__a" href="/l/?uddg=https%3A%2F%2Fwww.snopes.com%2Farticle">Snopes article</a>
			<div class="result__snippet">A fact check.</div>
		</div>
		<div class="result">
			<a class="result__a" href="https://apnews.com/story">AP story</a>
			<div class="result__snippet">Wire report.</div>
		</div>
	</body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "test", r.Form.Get("q"))
		_, _ = w.Write([]byte(page))
	}))
	defer ts.Close()

	p := NewDuckDuckGo(ts.Client(), "")
	p.endpoint = ts.URL

	results, err := p.Search(context.Background(), "test", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "https://www.snopes.com/article", results[0].URL)
	require.Equal(t, "snopes.com", results[0].Domain)
	require.Equal(t, "A fact check.", results[0].Snippet)
	require.Equal(t, "apnews.com", results[1].Domain)
}

func TestProviderScore_QualityPriors(t *testing.T) {
	// Paid backends outrank the HTML scrape at every shared position.
	require.Greater(t, providerScore(serperPrior, 0), providerScore(bravePrior, 0))
	require.Greater(t, providerScore(bravePrior, 0), providerScore(duckduckgoPrior, 0))
	require.Greater(t, providerScore(serperPrior, 5), providerScore(duckduckgoPrior, 5))

	// Rank decays within a provider, floored at 40% of its prior.
	require.Greater(t, providerScore(duckduckgoPrior, 0), providerScore(duckduckgoPrior, 3))
	require.InDelta(t, serperPrior*0.4, providerScore(serperPrior, 100), 1e-9)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		network bool
		rate    bool
		ok      bool
	}{
		{"ok", 200, false, false, true},
		{"rate limited", 429, false, true, false},
		{"server error is network class", 503, true, false, false},
		{"client error is provider class", 400, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus("p", tt.status)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.network, search.IsNetworkError(err))
			require.Equal(t, tt.rate, search.IsRateLimited(err))
		})
	}
}

func TestProvidersClassifyTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // connection refused from here on

	p := NewSerper("k", nil)
	p.endpoint = ts.URL

	_, err := p.Search(context.Background(), "test", 5)
	require.Error(t, err)
	require.True(t, search.IsNetworkError(err))

	var ne *search.NetworkError
	require.True(t, errors.As(err, &ne))
	require.Equal(t, "serper", ne.Provider)
}
