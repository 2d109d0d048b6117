package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"listingopt/pkg/retry"
)

const productPage = `
<html><body>
  <span id="productTitle">Widget Pro</span>
  <div id="feature-bullets"><ul><li><span class="a-list-item">Durable</span></li></ul></div>
  <div id="productDescription"><p>A great widget.</p></div>
</body></html>`

func newTestClient(endpoint string) *ScraperAPIClient {
	return NewScraperAPIClient(ScraperAPIConfig{
		APIKey:   "test-key",
		Endpoint: endpoint,
		Timeout:  time.Second,
	})
}

func TestFetchHTML_BuildsProxiedRequest(t *testing.T) {
	var gotKey, gotURL, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotURL = r.URL.Query().Get("url")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	body, err := client.FetchHTML(context.Background(), "B000TEST01")

	assert.Equal(t, nil, err)
	assert.Equal(t, productPage, string(body))
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "https://www.amazon.com/dp/B000TEST01", gotURL)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetchHTML_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchHTML(context.Background(), "B000TEST01")

	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, errors.Is(err, ErrUpstream))
}

func TestFetchHTML_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := newTestClient(endpoint).FetchHTML(context.Background(), "B000TEST01")

	assert.Equal(t, true, errors.Is(err, ErrUpstream))
}

func TestScraperFetch_ExtractsListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), retry.NoRetry)

	listing, err := s.Fetch(context.Background(), "B000TEST01")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Widget Pro", listing.Title)
	assert.Equal(t, []string{"Durable"}, listing.Bullets)
	assert.Equal(t, "A great widget.", listing.Description)
}

func TestScraperFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	listing, err := s.Fetch(context.Background(), "B000TEST01")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Widget Pro", listing.Title)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestScraperFetch_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	_, err := s.Fetch(context.Background(), "B000TEST01")

	assert.Equal(t, true, errors.Is(err, ErrUpstream))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
