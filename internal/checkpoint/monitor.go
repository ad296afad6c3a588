// Package checkpoint times named pipeline stages and aggregates them into
// per-stage statistics, per-category totals, and a bottleneck ranking.
// Monitoring is purely observational: a failed or missing checkpoint never
// affects pipeline behavior.
package checkpoint

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/claims"
)

// maxSamplesPerName bounds the per-checkpoint history so a long-running
// process cannot grow without limit. Oldest samples fall off first.
const maxSamplesPerName = 500

// maxReportHistory bounds the per-claim report log; oldest reports fall
// off first.
const maxReportHistory = 100

// maxReportTextLen caps the claim text stored in a report.
const maxReportTextLen = 100

// defaultCategories groups the pipeline's checkpoints for reporting.
var defaultCategories = map[string][]string{
	"source_search": {
		"query_generation",
		"web_search_execution",
		"source_prioritization",
		"result_deduplication",
	},
	"content_extraction": {
		"url_preprocessing",
		"content_extraction_race",
		"content_validation",
	},
	"evidence_analysis": {
		"keyword_matching",
		"evidence_extraction",
		"contradiction_detection",
		"relevance_scoring",
	},
	"final_processing": {
		"authenticity_calculation",
		"result_compilation",
	},
}

// Stats summarizes one checkpoint name across all recorded samples.
type Stats struct {
	Name        string        `json:"name"`
	Count       int           `json:"count"`
	Mean        time.Duration `json:"mean"`
	Median      time.Duration `json:"median"`
	Min         time.Duration `json:"min"`
	Max         time.Duration `json:"max"`
	SuccessRate float64       `json:"success_rate"`
}

// CategoryStats aggregates every checkpoint in one category.
type CategoryStats struct {
	Name            string        `json:"name"`
	TotalTime       time.Duration `json:"total_time"`
	PercentOfTotal  float64       `json:"percent_of_total"`
	CheckpointStats []Stats       `json:"checkpoints"`
}

// Bottleneck ranks one checkpoint by its mean duration.
type Bottleneck struct {
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Mean     time.Duration `json:"mean"`
	Max      time.Duration `json:"max"`
	Count    int           `json:"count"`
}

// Report is the full snapshot served by the stats API.
type Report struct {
	SessionDuration time.Duration   `json:"session_duration"`
	Categories      []CategoryStats `json:"categories"`
	Bottlenecks     []Bottleneck    `json:"bottlenecks"`
}

// ClaimCheckpoint is one stage timing inside a claim's report.
type ClaimCheckpoint struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
}

// ClaimReport summarizes one claim's trip through the pipeline.
type ClaimReport struct {
	ClaimID     string            `json:"claim_id"`
	ClaimText   string            `json:"claim_text"`
	ClaimType   string            `json:"claim_type"`
	Checkpoints []ClaimCheckpoint `json:"checkpoints"`
	TotalTime   time.Duration     `json:"total_time"`
	Success     bool              `json:"success"`
	RecordedAt  time.Time         `json:"recorded_at"`
}

type sample struct {
	duration time.Duration
	success  bool
}

// Monitor records checkpoint timings. Safe for concurrent use.
type Monitor struct {
	mu           sync.Mutex
	samples      map[string][]sample
	reports      []ClaimReport
	categoryOf   map[string]string
	categories   map[string][]string
	clock        claims.Clock
	logger       *zap.Logger
	sessionStart time.Time
}

// NewMonitor builds a Monitor with the default category layout.
func NewMonitor(clock claims.Clock, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	categoryOf := make(map[string]string)
	for category, names := range defaultCategories {
		for _, name := range names {
			categoryOf[name] = category
		}
	}
	return &Monitor{
		samples:      make(map[string][]sample),
		categoryOf:   categoryOf,
		categories:   defaultCategories,
		clock:        clock,
		logger:       logger.Named("checkpoint"),
		sessionStart: clock.Now(),
	}
}

// Span is one in-flight checkpoint timing.
type Span struct {
	monitor *Monitor
	name    string
	start   time.Time
	done    bool
}

// Start begins timing a checkpoint. Always pair with End.
func (m *Monitor) Start(name string) *Span {
	return &Span{monitor: m, name: name, start: m.clock.Now()}
}

// End stops the span and records the sample. Ending twice is a no-op.
func (s *Span) End(success bool) {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.monitor.record(s.name, s.monitor.clock.Now().Sub(s.start), success)
}

// Scope times fn as a single checkpoint; failure is derived from the
// returned error.
func (m *Monitor) Scope(name string, fn func() error) error {
	span := m.Start(name)
	err := fn()
	span.End(err == nil)
	return err
}

func (m *Monitor) record(name string, d time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.samples[name], sample{duration: d, success: success})
	if len(history) > maxSamplesPerName {
		history = history[len(history)-maxSamplesPerName:]
	}
	m.samples[name] = history

	m.logger.Debug("checkpoint recorded",
		zap.String("name", name),
		zap.Duration("duration", d),
		zap.Bool("success", success))
}

// AddReport logs one claim's checkpoint timings. The claim text is
// truncated; the history keeps only the most recent reports.
func (m *Monitor) AddReport(claimID, claimText, claimType string, checkpoints []ClaimCheckpoint, success bool) {
	var total time.Duration
	for _, cp := range checkpoints {
		total += cp.Duration
	}
	report := ClaimReport{
		ClaimID:     claimID,
		ClaimText:   truncateText(claimText, maxReportTextLen),
		ClaimType:   claimType,
		Checkpoints: checkpoints,
		TotalTime:   total,
		Success:     success,
		RecordedAt:  m.clock.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	if len(m.reports) > maxReportHistory {
		m.reports = m.reports[len(m.reports)-maxReportHistory:]
	}
}

// Reports returns a copy of the per-claim report history, oldest first.
func (m *Monitor) Reports() []ClaimReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ClaimReport, len(m.reports))
	copy(out, m.reports)
	return out
}

// Stats returns the aggregate for one checkpoint name. A name with no
// samples yields a zero-valued Stats.
func (m *Monitor) Stats(name string) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsLocked(name)
}

func (m *Monitor) statsLocked(name string) Stats {
	history := m.samples[name]
	if len(history) == 0 {
		return Stats{Name: name}
	}

	durations := make([]time.Duration, len(history))
	var total time.Duration
	successes := 0
	for i, s := range history {
		durations[i] = s.duration
		total += s.duration
		if s.success {
			successes++
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	median := durations[len(durations)/2]
	if len(durations)%2 == 0 {
		median = (durations[len(durations)/2-1] + durations[len(durations)/2]) / 2
	}
	return Stats{
		Name:        name,
		Count:       len(history),
		Mean:        total / time.Duration(len(history)),
		Median:      median,
		Min:         durations[0],
		Max:         durations[len(durations)-1],
		SuccessRate: float64(successes) / float64(len(history)),
	}
}

// Report builds the full aggregate snapshot: per-category totals with
// share of overall time, and the top bottlenecks by mean duration.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	categoryNames := make([]string, 0, len(m.categories))
	for name := range m.categories {
		categoryNames = append(categoryNames, name)
	}
	sort.Strings(categoryNames)

	var grandTotal time.Duration
	categories := make([]CategoryStats, 0, len(categoryNames))
	for _, category := range categoryNames {
		cs := CategoryStats{Name: category}
		for _, name := range m.categories[category] {
			stats := m.statsLocked(name)
			cs.CheckpointStats = append(cs.CheckpointStats, stats)
			cs.TotalTime += stats.Mean * time.Duration(stats.Count)
		}
		grandTotal += cs.TotalTime
		categories = append(categories, cs)
	}
	for i := range categories {
		if grandTotal > 0 {
			categories[i].PercentOfTotal = float64(categories[i].TotalTime) / float64(grandTotal) * 100
		}
	}

	return Report{
		SessionDuration: m.clock.Now().Sub(m.sessionStart),
		Categories:      categories,
		Bottlenecks:     m.bottlenecksLocked(10),
	}
}

// Bottlenecks returns the slowest checkpoints by mean duration.
func (m *Monitor) Bottlenecks(limit int) []Bottleneck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bottlenecksLocked(limit)
}

func (m *Monitor) bottlenecksLocked(limit int) []Bottleneck {
	out := make([]Bottleneck, 0, len(m.samples))
	for name := range m.samples {
		stats := m.statsLocked(name)
		if stats.Count == 0 {
			continue
		}
		category := m.categoryOf[name]
		if category == "" {
			category = "uncategorized"
		}
		out = append(out, Bottleneck{
			Name:     name,
			Category: category,
			Mean:     stats.Mean,
			Max:      stats.Max,
			Count:    stats.Count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean == out[j].Mean {
			return out[i].Name < out[j].Name
		}
		return out[i].Mean > out[j].Mean
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
