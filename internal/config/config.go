package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"listingopt/internal/model"
	"listingopt/pkg/retry"
)

const configPathEnv = "LISTINGOPT_CONFIG"

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"

	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds every setting the API and the batch optimizer need.
type Config struct {
	Port        string        `yaml:"port"`
	FrontendURL string        `yaml:"frontendUrl"`
	Log         LogConfig     `yaml:"log"`
	Store       StoreConfig   `yaml:"store"`
	Scraper     ScraperConfig `yaml:"scraper"`
	LLM         LLMConfig     `yaml:"llm"`
	Retry       RetryConfig   `yaml:"retry"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects the listing store backend and its connection.
type StoreConfig struct {
	Backend        string `yaml:"backend"`
	DatabaseURL    string `yaml:"databaseUrl"`
	RedisURL       string `yaml:"redisUrl"`
	RedisKeyPrefix string `yaml:"redisKeyPrefix"`
}

type ScraperConfig struct {
	APIKey         string        `yaml:"apiKey"`
	Endpoint       string        `yaml:"endpoint"`
	ProductBaseURL string        `yaml:"productBaseUrl"`
	UserAgent      string        `yaml:"userAgent"`
	Timeout        time.Duration `yaml:"timeout"`
}

// LLMConfig names the completion provider and the models tried in order.
// An empty model list means the provider's defaults.
type LLMConfig struct {
	Provider string   `yaml:"provider"`
	APIKey   string   `yaml:"apiKey"`
	BaseURL  string   `yaml:"baseUrl"`
	Models   []string `yaml:"models"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
}

func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{MaxAttempts: r.MaxAttempts, BaseDelay: r.BaseDelay}
}

// Load reads the optional YAML file named by LISTINGOPT_CONFIG, applies
// environment overrides and validates the result. Callers load .env first.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", model.ErrConfiguration, path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %w", model.ErrConfiguration, path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.Port, "PORT")
	setString(&c.FrontendURL, "FRONTEND_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.RedisURL, "REDIS_URL")
	setString(&c.Store.RedisKeyPrefix, "REDIS_KEY_PREFIX")

	setString(&c.Scraper.APIKey, "SCRAPER_API_KEY")
	setString(&c.Scraper.Endpoint, "SCRAPER_API_ENDPOINT")
	setString(&c.Scraper.ProductBaseURL, "SCRAPER_PRODUCT_BASE_URL")
	if err := setDuration(&c.Scraper.Timeout, "SCRAPER_TIMEOUT"); err != nil {
		return err
	}

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case ProviderGemini:
		setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	case ProviderOpenAI:
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	case ProviderAnthropic:
		setString(&c.LLM.APIKey, "ANTHROPIC_API_KEY")
	}
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	if v := os.Getenv("LLM_MODELS"); v != "" {
		c.LLM.Models = splitList(v)
	}

	if v := os.Getenv("RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RETRY_MAX_ATTEMPTS=%q: %w", model.ErrConfiguration, v, err)
		}
		c.Retry.MaxAttempts = n
	}
	return setDuration(&c.Retry.BaseDelay, "RETRY_BASE_DELAY")
}

func (c *Config) validate() error {
	var missing []string

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", model.ErrConfiguration, c.Store.Backend)
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		if c.LLM.APIKey == "" {
			missing = append(missing, strings.ToUpper(c.LLM.Provider)+"_API_KEY")
		}
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", model.ErrConfiguration, c.LLM.Provider)
	}

	if c.Scraper.APIKey == "" {
		missing = append(missing, "SCRAPER_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrConfiguration, strings.Join(missing, ", "))
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: RETRY_MAX_ATTEMPTS must be at least 1, got %d", model.ErrConfiguration, c.Retry.MaxAttempts)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", model.ErrConfiguration, key, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Port:  "8080",
		Log:   LogConfig{Level: "info", Format: "json"},
		Store: StoreConfig{Backend: BackendPostgres, RedisKeyPrefix: "listingopt"},
		Scraper: ScraperConfig{
			Timeout: 10 * time.Second,
		},
		LLM: LLMConfig{Provider: ProviderGemini},
		Retry: RetryConfig{
			MaxAttempts: retry.DefaultMaxAttempts,
			BaseDelay:   retry.DefaultBaseDelay,
		},
	}
}
