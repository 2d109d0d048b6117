package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"listingopt/internal/model"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		configPathEnv, "PORT", "FRONTEND_URL", "LOG_LEVEL", "LOG_FORMAT",
		"STORE_BACKEND", "DATABASE_URL", "REDIS_URL", "REDIS_KEY_PREFIX",
		"SCRAPER_API_KEY", "SCRAPER_API_ENDPOINT", "SCRAPER_PRODUCT_BASE_URL", "SCRAPER_TIMEOUT",
		"LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "LLM_BASE_URL", "LLM_MODELS",
		"RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsWithRequiredEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/listings")
	t.Setenv("SCRAPER_API_KEY", "scrape-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, "listingopt", cfg.Store.RedisKeyPrefix)
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load()

	assert.Equal(t, true, errors.Is(err, model.ErrConfiguration))
	assert.MatchRegex(t, err.Error(), "DATABASE_URL")
	assert.MatchRegex(t, err.Error(), "GEMINI_API_KEY")
	assert.MatchRegex(t, err.Error(), "SCRAPER_API_KEY")
}

func TestLoad_ProviderKeyFollowsProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SCRAPER_API_KEY", "scrape-key")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	_, err := Load()
	assert.Equal(t, true, errors.Is(err, model.ErrConfiguration))
	assert.MatchRegex(t, err.Error(), "ANTHROPIC_API_KEY")

	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("LLM_MODELS", "claude-a, ,claude-b")

	cfg, err := Load()
	assert.Equal(t, nil, err)
	assert.Equal(t, "anthropic-key", cfg.LLM.APIKey)
	assert.Equal(t, []string{"claude-a", "claude-b"}, cfg.LLM.Models)
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "mysql")
	t.Setenv("SCRAPER_API_KEY", "scrape-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	_, err := Load()

	assert.Equal(t, true, errors.Is(err, model.ErrConfiguration))
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SCRAPER_API_KEY", "scrape-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("SCRAPER_TIMEOUT", "ten seconds")

	_, err := Load()

	assert.Equal(t, true, errors.Is(err, model.ErrConfiguration))
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "listingopt.yaml")
	raw := `
port: "9090"
store:
  backend: redis
  redisUrl: redis://localhost:6379/0
  redisKeyPrefix: test
scraper:
  apiKey: file-key
  timeout: 5s
llm:
  provider: openai
  apiKey: file-openai-key
  models: [gpt-a, gpt-b]
retry:
  maxAttempts: 5
  baseDelay: 1s
`
	assert.Equal(t, nil, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "env-openai-key")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, "test", cfg.Store.RedisKeyPrefix)
	assert.Equal(t, "file-key", cfg.Scraper.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "env-openai-key", cfg.LLM.APIKey)
	assert.Equal(t, []string{"gpt-a", "gpt-b"}, cfg.LLM.Models)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Policy().BaseDelay)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()

	assert.Equal(t, true, errors.Is(err, model.ErrConfiguration))
}
