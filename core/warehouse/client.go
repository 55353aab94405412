package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrPermanent marks warehouse API failures that must not be retried:
// auth rejections, unexpected client errors, and malformed top-level
// responses. A fetch returning this error fails the whole run.
var ErrPermanent = errors.New("permanent warehouse API failure")

// backoffCap bounds the exponential retry delay.
const backoffCap = 8 * time.Second

// Client defines the read-only operations the engine consumes from the
// warehouse API. Implementations must be pre-authenticated; the engine is
// agnostic to the auth method.
type Client interface {
	// FetchProducts streams the paginated product feed. fn is invoked once
	// per page in order; returning an error stops the fetch. The stream is
	// finite and not restartable mid-way (a new call starts over).
	// A zero since fetches everything.
	FetchProducts(ctx context.Context, since time.Time, fn func(page []RawProduct) error) error
	// FetchProduct fetches a single product by external ID.
	FetchProduct(ctx context.Context, id string) (*RawProduct, error)
	// FetchStock fetches the full stock-level feed.
	FetchStock(ctx context.Context) ([]RawStock, error)
	// FetchBrands fetches the brand list.
	FetchBrands(ctx context.Context) ([]RawBrand, error)
}

// HTTPClient is the production Client backed by net/http.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a warehouse API client from the configuration.
func NewClient(cfg Config) (*HTTPClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("warehouse api_url is required")
	}
	if !cfg.IsValidAuthMethod() {
		return nil, fmt.Errorf("unknown auth_method %q", cfg.AuthMethod)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}, nil
}

func (c *HTTPClient) FetchProducts(ctx context.Context, since time.Time, fn func(page []RawProduct) error) error {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}

	for page := 1; ; page++ {
		query := url.Values{
			"page":      {strconv.Itoa(page)},
			"page_size": {strconv.Itoa(pageSize)},
		}
		if !since.IsZero() {
			query.Set("since", since.UTC().Format(time.RFC3339))
		}

		body, err := c.get(ctx, "/products", query)
		if err != nil {
			return fmt.Errorf("fetch products page %d: %w", page, err)
		}

		var envelope struct {
			Products []RawProduct `json:"products"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("malformed products response on page %d: %v: %w", page, err, ErrPermanent)
		}

		if len(envelope.Products) > 0 {
			if err := fn(envelope.Products); err != nil {
				return err
			}
		}

		if len(envelope.Products) < pageSize {
			return nil
		}
	}
}

func (c *HTTPClient) FetchProduct(ctx context.Context, id string) (*RawProduct, error) {
	body, err := c.get(ctx, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}

	var product RawProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("malformed product response for %s: %v: %w", id, err, ErrPermanent)
	}
	return &product, nil
}

func (c *HTTPClient) FetchStock(ctx context.Context) ([]RawStock, error) {
	body, err := c.get(ctx, "/stock", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch stock: %w", err)
	}

	var envelope struct {
		Stock []RawStock `json:"stock"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed stock response: %v: %w", err, ErrPermanent)
	}
	return envelope.Stock, nil
}

func (c *HTTPClient) FetchBrands(ctx context.Context) ([]RawBrand, error) {
	body, err := c.get(ctx, "/brands", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch brands: %w", err)
	}

	var envelope struct {
		Brands []RawBrand `json:"brands"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed brands response: %v: %w", err, ErrPermanent)
	}
	return envelope.Brands, nil
}

// get performs a GET with auth headers and bounded retries.
// Transient failures (connection errors, 429, 5xx) retry with exponential
// backoff up to MaxRetries; 401/403 and other client errors fail immediately.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := strings.TrimSuffix(c.cfg.URL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	base := time.Duration(c.cfg.BackoffBaseMS) * time.Millisecond
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := base << (attempt - 1)
			if delay > backoffCap {
				delay = backoffCap
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %v: %w", err, ErrPermanent)
		}
		req.Header.Set("Accept", "application/json")
		c.applyAuth(req)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Connection errors and client timeouts are transient.
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = readErr
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("auth rejected with status %d: %w", resp.StatusCode, ErrPermanent)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("unexpected status %d: %w", resp.StatusCode, ErrPermanent)
		}
	}

	return nil, fmt.Errorf("retry budget exhausted after %d attempts: %v: %w", c.cfg.MaxRetries+1, lastErr, ErrPermanent)
}

// applyAuth sets the configured authentication headers on the request.
func (c *HTTPClient) applyAuth(req *http.Request) {
	switch c.cfg.AuthMethod {
	case AuthApiKey:
		header := c.cfg.ApiKeyHeader
		if header == "" {
			header = "X-Api-Key"
		}
		req.Header.Set(header, c.cfg.ApiKey)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	case AuthBasic:
		req.SetBasicAuth(c.cfg.BasicUser, c.cfg.BasicPassword)
	case AuthHeaders:
		for name, value := range c.cfg.Headers() {
			req.Header.Set(name, value)
		}
	}
}
