package scraper

import (
	"bytes"
	"context"
	"fmt"

	"listingopt/pkg/retry"
)

// Scraper fetches a product page and reduces it to listing fields.
type Scraper struct {
	fetcher PageFetcher
	policy  retry.Policy
}

func New(fetcher PageFetcher, policy retry.Policy) *Scraper {
	return &Scraper{fetcher: fetcher, policy: policy}
}

func (s *Scraper) Fetch(ctx context.Context, asin string) (*Listing, error) {
	var page []byte
	err := s.policy.Do(ctx, func() error {
		var err error
		page, err = s.fetcher.FetchHTML(ctx, asin)
		return err
	})
	if err != nil {
		return nil, err
	}

	listing, err := ExtractHTML(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%s parse page for %s: %w", s.fetcher.Name(), asin, err)
	}

	return listing, nil
}
