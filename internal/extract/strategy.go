package extract

import "context"

// Strategy is one way of turning a URL into article text. Strategies run
// concurrently under the engine's shared deadline.
type Strategy interface {
	// Name identifies the strategy in results and metrics.
	Name() string
	// Priority breaks near-ties between candidates: when two results are
	// within the length window, the higher-priority method wins.
	Priority() int
	// Extract fetches and extracts readable text for the URL. category
	// selects the selector set for selector-driven strategies.
	Extract(ctx context.Context, url, category string) (string, error)
}

// Strategy priorities, highest quality first. Rendered-DOM extraction
// beats readability parsing, which beats raw selector scraping.
const (
	priorityHeadless    = 3
	priorityReadability = 2
	prioritySelector    = 1
	priorityStructural  = 0
)
