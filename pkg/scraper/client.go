package scraper

import (
	"context"
	"errors"
)

// ErrUpstream wraps every transport-level scrape failure: connection errors,
// timeouts and non-2xx replies from the scraping intermediary.
var ErrUpstream = errors.New("scraper upstream error")

type Listing struct {
	Title       string
	Bullets     []string
	Description string
}

type PageFetcher interface {
	FetchHTML(ctx context.Context, asin string) ([]byte, error)
	Name() string
}
