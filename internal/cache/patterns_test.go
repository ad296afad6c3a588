package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPatternTracker_TrackBoundsHistory(t *testing.T) {
	tr := NewPatternTracker()
	for i := 0; i < maxAccessHistory*3; i++ {
		tr.Track("k", "political", []string{"vaccine", "mandate"})
	}

	patterns := tr.Recent(time.Hour)
	require.Len(t, patterns, 1)
	p := patterns[0]
	require.Equal(t, maxAccessHistory*3, p.Frequency)
	require.Len(t, p.AccessTimes, maxAccessHistory)
	require.Len(t, p.ClaimTypes, maxAccessHistory)
	require.LessOrEqual(t, len(p.Keywords), maxKeywordHistory)
}

func TestPatternTracker_RecentWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tr := NewPatternTracker(WithTrackerNowFunc(clock.Now))

	tr.Track("old", "general", nil)
	clock.Advance(2 * time.Hour)
	tr.Track("fresh", "general", nil)

	patterns := tr.Recent(time.Hour)
	require.Len(t, patterns, 1)
	require.Equal(t, "fresh", patterns[0].Key)
}

func TestPatternTracker_RecentOrdersMostRecentFirst(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tr := NewPatternTracker(WithTrackerNowFunc(clock.Now))

	tr.Track("a", "general", nil)
	clock.Advance(time.Minute)
	tr.Track("b", "general", nil)
	clock.Advance(time.Minute)
	tr.Track("c", "general", nil)

	patterns := tr.Recent(time.Hour)
	require.Len(t, patterns, 3)
	require.Equal(t, "c", patterns[0].Key)
	require.Equal(t, "a", patterns[2].Key)
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "covid vaccine study", "covid vaccine study", 1.0},
		{"disjoint", "inflation rate report", "covid vaccine study", 0.0},
		{"partial", "covid vaccine", "covid booster", 1.0 / 3.0},
		{"case and punctuation folded", "Vaccine, Study!", "vaccine study", 1.0},
		{"empty", "", "anything", 0.0},
		{"short tokens ignored", "a an to", "a an to", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, TokenOverlap(tt.a, tt.b), 0.0001)
		})
	}
}

type recordingWarmer struct {
	queries []string
}

func (w *recordingWarmer) Warm(_ context.Context, query string) {
	w.queries = append(w.queries, query)
}

func TestPrefetcher_PredictQueries(t *testing.T) {
	tr := NewPatternTracker()
	for i := 0; i < 5; i++ {
		tr.Track("search:vaccine", "medical", []string{"vaccine", "efficacy"})
	}
	for i := 0; i < 4; i++ {
		tr.Track("search:inflation", "financial", []string{"inflation", "cpi"})
	}
	// Below MinObservations, must not contribute.
	tr.Track("search:rare", "general", []string{"unrelated"})

	p := NewPrefetcher(PrefetchConfig{MinObservations: 3}, tr, nil, nil, nil)
	queries := p.PredictQueries()

	require.NotEmpty(t, queries)
	require.LessOrEqual(t, len(queries), 5)
	joined := ""
	for _, q := range queries {
		joined += q + "\n"
	}
	require.Contains(t, joined, "vaccine")
	require.Contains(t, joined, "inflation")
	require.NotContains(t, joined, "unrelated")
}

func TestPrefetcher_PredictQueriesTagsClaimType(t *testing.T) {
	tr := NewPatternTracker()
	for i := 0; i < 3; i++ {
		tr.Track("search:mandate", "political", []string{"mandate"})
	}

	p := NewPrefetcher(PrefetchConfig{}, tr, nil, nil, nil)
	queries := p.PredictQueries()

	require.Len(t, queries, 1)
	require.Equal(t, "fact check mandate political", queries[0])
}

func TestPrefetcher_RunOnceWarmsPredictions(t *testing.T) {
	tr := NewPatternTracker()
	for i := 0; i < 3; i++ {
		tr.Track("search:mandate", "political", []string{"mandate"})
	}
	warmer := &recordingWarmer{}
	p := NewPrefetcher(PrefetchConfig{}, tr, warmer, nil, nil)

	p.runOnce(context.Background())
	require.Equal(t, []string{"fact check mandate political"}, warmer.queries)
}

func TestPrefetcher_EmptyTrackerPredictsNothing(t *testing.T) {
	p := NewPrefetcher(PrefetchConfig{}, NewPatternTracker(), nil, nil, nil)
	require.Empty(t, p.PredictQueries())
}
