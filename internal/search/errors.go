package search

import (
	"errors"
	"fmt"
	"net"
)

// ErrRateLimited marks a provider refusing further requests for now.
// Rate-limit failures are never retried against the same provider.
var ErrRateLimited = errors.New("provider rate limited")

// NetworkError wraps transient transport failures. Only errors of this
// class are retried against the same provider.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError wraps a non-transient provider failure (bad status,
// malformed payload). Not retried; the router moves to the next provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider failure (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: provider failure: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is retryable against the same
// provider. Raw net.Error values count too, so providers do not have to
// wrap every transport failure themselves.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
