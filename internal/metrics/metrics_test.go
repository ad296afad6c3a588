package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Reset collectors for testing purposes.
	searchRequestsTotal = nil
	cacheLookupsTotal = nil
	httpRequestsTotal = nil
	httpRequestDurationSecs = nil

	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if searchRequestsTotal == nil || cacheLookupsTotal == nil ||
		httpRequestsTotal == nil || httpRequestDurationSecs == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObserveSearch("duckduckgo", "success")
	if val := testutil.ToFloat64(searchRequestsTotal.WithLabelValues("duckduckgo", "success")); val != 1 {
		t.Errorf("Expected searchRequestsTotal to be 1, got %f", val)
	}
}

func TestObserveCacheLookup(t *testing.T) {
	Init()

	ObserveCacheLookup("search", true)
	ObserveCacheLookup("search", false)
	ObserveCacheLookup("search", false)

	if val := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("search", "hit")); val != 1 {
		t.Errorf("Expected 1 hit, got %f", val)
	}
	if val := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("search", "miss")); val != 2 {
		t.Errorf("Expected 2 misses, got %f", val)
	}
}

func TestObserveClaim(t *testing.T) {
	Init()

	ObserveClaim("compiled", 2*time.Second)
	if val := testutil.ToFloat64(claimsVerifiedTotal.WithLabelValues("compiled")); val != 1 {
		t.Errorf("Expected claimsVerifiedTotal to be 1, got %f", val)
	}
}
