// Package app builds the listing service from configuration. Both binaries
// share it so the API and the batch optimizer run the same pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"listingopt/db"
	"listingopt/internal/config"
	"listingopt/internal/model"
	"listingopt/internal/repository"
	"listingopt/internal/service"
	"listingopt/pkg/llm"
	"listingopt/pkg/scraper"
)

// NewListingService connects the configured store and returns the service
// plus a function releasing the store connection.
func NewListingService(ctx context.Context, cfg config.Config) (*service.ListingService, func(), error) {
	store, closeStore, err := NewStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	policy := cfg.Retry.Policy()

	fetcher := scraper.NewScraperAPIClient(scraper.ScraperAPIConfig{
		APIKey:         cfg.Scraper.APIKey,
		Endpoint:       cfg.Scraper.Endpoint,
		ProductBaseURL: cfg.Scraper.ProductBaseURL,
		UserAgent:      cfg.Scraper.UserAgent,
		Timeout:        cfg.Scraper.Timeout,
	})

	client, models, err := NewCompletionClient(cfg.LLM)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	slog.Info("listing service configured",
		"store", cfg.Store.Backend,
		"provider", client.Name(),
		"models", models,
		"retry_attempts", policy.MaxAttempts,
	)

	svc := service.NewListingService(
		store,
		scraper.New(fetcher, policy),
		llm.NewOptimizer(client, models, policy),
	)
	return svc, closeStore, nil
}

func NewStore(ctx context.Context, cfg config.StoreConfig) (service.ListingStore, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		conn, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: connect postgres: %w", model.ErrPersistence, err)
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
		}
		return repository.NewListingRepository(conn), func() { conn.Close() }, nil

	case config.BackendRedis:
		rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: connect redis: %w", model.ErrPersistence, err)
		}
		return repository.NewRedisListingRepository(rdb, cfg.RedisKeyPrefix), func() { rdb.Close() }, nil

	case config.BackendMemory:
		slog.Warn("using in-memory listing store, data is lost on exit")
		return repository.NewMemoryListingRepository(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("%w: unknown store backend %q", model.ErrConfiguration, cfg.Backend)
}

// NewCompletionClient returns the client for the configured provider and the
// models to try, falling back to the provider defaults.
func NewCompletionClient(cfg config.LLMConfig) (llm.CompletionClient, []string, error) {
	var (
		client   llm.CompletionClient
		defaults []string
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		client, defaults = llm.NewGeminiClient(cfg.APIKey, cfg.BaseURL), llm.DefaultGeminiModels
	case config.ProviderOpenAI:
		client, defaults = llm.NewOpenAIClient(cfg.APIKey, cfg.BaseURL), llm.DefaultOpenAIModels
	case config.ProviderAnthropic:
		client, defaults = llm.NewAnthropicClient(cfg.APIKey, cfg.BaseURL), llm.DefaultAnthropicModels
	default:
		return nil, nil, fmt.Errorf("%w: unknown llm provider %q", model.ErrConfiguration, cfg.Provider)
	}

	models := cfg.Models
	if len(models) == 0 {
		models = defaults
	}
	return client, models, nil
}
