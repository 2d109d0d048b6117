package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"listingopt/pkg/retry"
)

const (
	DefaultEndpoint       = "http://api.scraperapi.com"
	DefaultProductBaseURL = "https://www.amazon.com/dp/"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout        = 10 * time.Second

	maxErrorBody = 512
)

type ScraperAPIConfig struct {
	APIKey         string
	Endpoint       string
	ProductBaseURL string
	UserAgent      string
	Timeout        time.Duration
}

// ScraperAPIClient fetches rendered product pages through ScraperAPI so the
// marketplace's anti-bot defenses see a real browser session.
type ScraperAPIClient struct {
	apiKey         string
	endpoint       string
	productBaseURL string
	userAgent      string
	httpClient     *http.Client
}

func NewScraperAPIClient(cfg ScraperAPIConfig) *ScraperAPIClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.ProductBaseURL == "" {
		cfg.ProductBaseURL = DefaultProductBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &ScraperAPIClient{
		apiKey:         cfg.APIKey,
		endpoint:       cfg.Endpoint,
		productBaseURL: cfg.ProductBaseURL,
		userAgent:      cfg.UserAgent,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *ScraperAPIClient) Name() string {
	return "ScraperAPI"
}

func (c *ScraperAPIClient) ProductURL(asin string) string {
	return c.productBaseURL + url.PathEscape(asin)
}

func (c *ScraperAPIClient) requestURL(asin string) string {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("url", c.ProductURL(asin))
	return c.endpoint + "?" + params.Encode()
}

// FetchHTML returns the raw page markup for asin. Client errors other than
// 429 are marked permanent so a retry policy does not repeat them.
func (c *ScraperAPIClient) FetchHTML(ctx context.Context, asin string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(asin), nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: scraperapi fetch: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%w: scraperapi returned %s: %s", ErrUpstream, resp.Status, strings.TrimSpace(string(snippet)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: scraperapi read body: %w", ErrUpstream, err)
	}

	return body, nil
}
