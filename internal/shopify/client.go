// Package shopify reads the sellable catalog from the Shopify Storefront API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/text/currency"
)

const (
	DefaultAPIVersion = "2024-01"
	DefaultPageSize   = 25

	accessTokenHeader = "X-Shopify-Storefront-Access-Token"
	maxResponseBytes  = 4 << 20
)

var ErrStoreNotConfigured = errors.New("shopify store domain not configured")

const productsQuery = `
query getProducts($first: Int!) {
  products(first: $first) {
    nodes {
      id
      handle
      title
      description
      featuredImage {
        url
      }
      images(first: 10) {
        edges {
          node {
            url
          }
        }
      }
      priceRange {
        minVariantPrice {
          amount
        }
      }
      tags
      variants(first: 10) {
        edges {
          node {
            id
            title
            price {
              amount
            }
          }
        }
      }
    }
  }
}`

type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
	Currency    currency.Unit
	Timeout     time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]productNode]
	logger     *slog.Logger
}

var _ port.ProductSource = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]productNode](gobreaker.Settings{
		Name:        "shopify-storefront",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return c
}

// Endpoint is the GraphQL URL for the configured store.
func (c *Client) Endpoint() string {
	base := strings.TrimRight(c.cfg.StoreDomain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/api/%s/graphql.json", base, c.cfg.APIVersion)
}

// ListProducts fetches the first n products. It does not retry; callers
// offer the user a manual retry instead.
func (c *Client) ListProducts(ctx context.Context, first int) ([]domain.Product, error) {
	if c.cfg.StoreDomain == "" {
		return nil, ErrStoreNotConfigured
	}
	if first <= 0 {
		first = DefaultPageSize
	}

	nodes, err := c.breaker.Execute(func() ([]productNode, error) {
		return c.fetchNodes(ctx, first)
	})
	if err != nil {
		return nil, fmt.Errorf("breaker.Execute: %w", err)
	}

	products := make([]domain.Product, 0, len(nodes))
	for _, node := range nodes {
		p, err := toProduct(node, c.currency())
		if err != nil {
			c.logger.WarnContext(ctx, "product skipped",
				slog.String("shopify_id", node.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}

	return products, nil
}

// fetchNodes reports GraphQL errors and undecodable bodies as failed calls.
func (c *Client) fetchNodes(ctx context.Context, first int) ([]productNode, error) {
	body, err := c.query(ctx, first)
	if err != nil {
		return nil, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", resp.Errors[0].Message)
	}
	if resp.Data == nil || resp.Data.Products == nil {
		return nil, nil
	}
	return resp.Data.Products.Nodes, nil
}

type graphQLResponse struct {
	Data *struct {
		Products *struct {
			Nodes []productNode `json:"nodes"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, first int) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     productsQuery,
		"variables": map[string]any{"first": first},
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AccessToken != "" {
		req.Header.Set(accessTokenHeader, c.cfg.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return body, nil
}

func (c *Client) currency() currency.Unit {
	if c.cfg.Currency == (currency.Unit{}) {
		return currency.USD
	}
	return c.cfg.Currency
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error status: %d", e.StatusCode)
}
