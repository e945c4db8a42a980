package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RemoteProduct is the upstream product record. Only the mapped fields are kept.
type RemoteProduct struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// Source is the upstream product and category feed.
type Source interface {
	FetchProducts(ctx context.Context) ([]RemoteProduct, error)
	FetchCategories(ctx context.Context) ([]string, error)
}

var ErrUpstreamStatus = errors.New("unexpected upstream status")

// Client reads the public demo catalog API. Requests are not retried; after repeated failures
// the breaker opens and calls fail fast until the cooldown passes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg config.CatalogConfig) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 3
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "catalog",
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
	}
}

func (c *Client) FetchProducts(ctx context.Context) ([]RemoteProduct, error) {
	body, err := c.get(ctx, "/products")
	if err != nil {
		return nil, err
	}
	var products []RemoteProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/products/categories")
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: GET %s returned %d after %s", ErrUpstreamStatus, path, resp.StatusCode, time.Since(start))
		}
		return io.ReadAll(resp.Body)
	})
}
