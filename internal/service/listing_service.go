// Package service holds the cache-or-scrape resolver and the optimize flow.
// It owns translation of collaborator failures into model error kinds.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"listingopt/internal/model"
	"listingopt/pkg/llm"
	"listingopt/pkg/scraper"
)

type ListingStore interface {
	GetOriginal(ctx context.Context, asin string) (*model.OriginalListing, error)
	GetOptimized(ctx context.Context, asin string) (*model.OptimizedListing, error)
	UpsertOriginal(ctx context.Context, listing *model.OriginalListing) error
	SaveOptimization(ctx context.Context, original *model.OriginalListing, optimized *model.OptimizedListing) error
	Ping(ctx context.Context) error
}

type ListingScraper interface {
	Fetch(ctx context.Context, asin string) (*scraper.Listing, error)
}

type ListingOptimizer interface {
	Run(ctx context.Context, input llm.OptimizeInput) (*llm.OptimizeResult, error)
}

type ListingService struct {
	store     ListingStore
	scraper   ListingScraper
	optimizer ListingOptimizer
}

func NewListingService(store ListingStore, scraper ListingScraper, optimizer ListingOptimizer) *ListingService {
	return &ListingService{
		store:     store,
		scraper:   scraper,
		optimizer: optimizer,
	}
}

// ResolveListing returns the stored listing for asin, scraping and storing it
// first when no original exists yet. A failed scrape is not remembered, so
// the next call tries again.
func (s *ListingService) ResolveListing(ctx context.Context, asin string) (*model.Listing, error) {
	asin = strings.TrimSpace(asin)
	if asin == "" {
		return nil, model.ErrValidation
	}

	var (
		original  *model.OriginalListing
		optimized *model.OptimizedListing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		original, err = s.store.GetOriginal(gctx, asin)
		return err
	})
	g.Go(func() error {
		var err error
		optimized, err = s.store.GetOptimized(gctx, asin)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}

	if original != nil {
		return &model.Listing{Original: original, Optimized: optimized}, nil
	}

	slog.Info("listing not cached, scraping", "asin", asin)

	scraped, err := s.scraper.Fetch(ctx, asin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrUpstreamTransport, err)
	}

	original = model.NewOriginalListing(asin, model.ListingContent{
		Title:       scraped.Title,
		Bullets:     scraped.Bullets,
		Description: scraped.Description,
	})

	if err := s.store.UpsertOriginal(ctx, original); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}

	slog.Info("listing scraped and stored", "asin", asin, "bullets", len(original.Bullets))

	return &model.Listing{Original: original}, nil
}

// OptimizeListing rewrites content and stores it as the new original together
// with the optimized version.
func (s *ListingService) OptimizeListing(ctx context.Context, asin string, content model.ListingContent) (*model.OptimizedListing, error) {
	asin = strings.TrimSpace(asin)
	if err := validateContent(asin, content); err != nil {
		return nil, err
	}

	result, err := s.optimizer.Run(ctx, llm.OptimizeInput{
		Title:       content.Title,
		Bullets:     content.Bullets,
		Description: content.Description,
	})
	if err != nil {
		return nil, classifyOptimizerError(err)
	}

	original := model.NewOriginalListing(asin, content)
	optimized := &model.OptimizedListing{
		ASIN:           asin,
		OptTitle:       result.OptTitle,
		OptBullets:     result.OptBullets,
		OptDescription: result.OptDescription,
		Keywords:       result.Keywords,
	}

	if err := s.store.SaveOptimization(ctx, original, optimized); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}

	slog.Info("listing optimization saved", "asin", asin, "model", result.ModelUsed)

	return optimized, nil
}

func (s *ListingService) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func validateContent(asin string, content model.ListingContent) error {
	if asin == "" || strings.TrimSpace(content.Title) == "" || strings.TrimSpace(content.Description) == "" {
		return model.ErrValidation
	}

	for _, b := range content.Bullets {
		if strings.TrimSpace(b) != "" {
			return nil
		}
	}
	return model.ErrValidation
}

func classifyOptimizerError(err error) error {
	if errors.Is(err, llm.ErrParse) {
		return fmt.Errorf("%w: %w", model.ErrOptimizationParse, err)
	}
	return fmt.Errorf("%w: %w", model.ErrUpstreamTransport, err)
}
