// Package fetch provides the retrieval backends used by the scraper: a
// lightweight HTTP client shaped to resemble ordinary browser traffic, and a
// headless-browser fallback for pages served behind a challenge wall.
package fetch

import (
	"context"
	"fmt"
)

// Result is the outcome of fetching a page. A fetch either completes with a
// full body or fails outright; there are no partial results.
type Result struct {
	Body       string
	StatusCode int
}

// Fetcher retrieves a page body for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
}

// Closer is implemented by fetchers holding a long-lived resource that must
// be released when no further fetches are expected.
type Closer interface {
	Close() error
}

// RetrievalError wraps a transport failure from either backend. It is fatal
// for the scrape attempt; there is no retry beyond the built-in fast to
// browser escalation.
type RetrievalError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Errorf("fetch %s (status %d): %w", e.URL, e.StatusCode, e.Err).Error()
	}
	return fmt.Errorf("fetch %s: %w", e.URL, e.Err).Error()
}

func (e RetrievalError) Unwrap() error {
	return e.Err
}
