package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// StructuralStrategy walks the page with colly and concatenates paragraph
// and heading text. Crude, but it survives pages whose markup defeats both
// the selector sets and readability scoring.
type StructuralStrategy struct {
	userAgent string
}

// NewStructuralStrategy builds the colly-based strategy.
func NewStructuralStrategy(userAgent string) *StructuralStrategy {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &StructuralStrategy{userAgent: userAgent}
}

func (s *StructuralStrategy) Name() string { return "structural" }

func (s *StructuralStrategy) Priority() int { return priorityStructural }

func (s *StructuralStrategy) Extract(ctx context.Context, url, _ string) (string, error) {
	collector := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxDepth(1),
	)
	timeout := 15 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", ctx.Err()
	}
	collector.SetRequestTimeout(timeout)

	var parts []string
	collector.OnHTML("p, h1, h2, h3", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.Text)
		if len(text) > 20 {
			parts = append(parts, text)
		}
	})

	var fetchErr error
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return "", fmt.Errorf("visit page: %w", err)
	}
	collector.Wait()
	if fetchErr != nil {
		return "", fmt.Errorf("fetch page: %w", fetchErr)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no structural text found")
	}
	return collapseWhitespace(strings.Join(parts, " ")), nil
}
