// Package kroger is an authenticated HTTP client for the Kroger public API.
//
// It covers the three endpoints krogerd exposes as tools: product search,
// product detail, and location search. Responses are deserialized into the
// fixed records in types.go; non-success statuses surface as *APIError with
// the upstream status and detail intact.
package kroger

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/grocerlabs/krogerd/internal/config"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// TokenSource supplies bearer tokens for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(tok string)
}

// Client calls the Kroger v1 REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	logger     *zap.Logger
}

// NewClient creates a client from the Kroger configuration.
func NewClient(cfg config.KrogerConfig, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout.Duration(),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		tokens:  tokens,
		logger:  logger,
	}
}

// SearchProducts searches the catalog for the query term. A 200 with an
// empty data array returns an empty, non-nil slice.
func (c *Client) SearchProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	if q.Term == "" {
		return nil, fmt.Errorf("search term is required")
	}

	params := url.Values{}
	params.Set("filter.term", q.Term)
	params.Set("filter.limit", strconv.Itoa(clampLimit(q.Limit)))
	if q.LocationID != "" {
		params.Set("filter.locationId", q.LocationID)
	}
	if q.Start > 0 {
		params.Set("filter.start", strconv.Itoa(q.Start))
	}

	var resp productListResponse
	if err := c.getJSON(ctx, "/products", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []Product{}
	}

	c.logger.Debug("product search completed",
		zap.String("term", q.Term),
		zap.Int("results", len(resp.Data)),
		zap.Int("total", resp.Meta.Pagination.Total))

	return resp.Data, nil
}

// GetProduct fetches a single product by ID. locationID, when set, adds
// store-specific price and aisle data. Unknown IDs return ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id, locationID string) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id is required")
	}

	params := url.Values{}
	if locationID != "" {
		params.Set("filter.locationId", locationID)
	}

	var resp productResponse
	err := c.getJSON(ctx, "/products/"+url.PathEscape(id), params, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	return &resp.Data, nil
}

// SearchLocations finds stores near a zip code, nearest first per the
// upstream ordering.
func (c *Client) SearchLocations(ctx context.Context, q LocationQuery) ([]Location, error) {
	if q.ZipCode == "" {
		return nil, fmt.Errorf("zip code is required")
	}

	params := url.Values{}
	params.Set("filter.zipCode.near", q.ZipCode)
	if q.RadiusMiles > 0 {
		params.Set("filter.radiusInMiles", strconv.Itoa(q.RadiusMiles))
	}
	if q.Limit > 0 {
		params.Set("filter.limit", strconv.Itoa(q.Limit))
	}
	if q.Chain != "" {
		params.Set("filter.chain", q.Chain)
	}

	var resp locationListResponse
	if err := c.getJSON(ctx, "/locations", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []Location{}
	}

	c.logger.Debug("location search completed",
		zap.String("zip_code", q.ZipCode),
		zap.Int("results", len(resp.Data)))

	return resp.Data, nil
}

// getJSON issues an authenticated GET and decodes the 200 body into out.
//
// A 401 response invalidates the token and retries the request exactly once
// with a freshly exchanged token; a second 401 surfaces ErrUnauthorized.
// That single retry is the only retry the client performs.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	status, body, err := c.do(ctx, tok, path, params)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.logger.Info("token rejected upstream, refreshing once", zap.String("path", path))
		c.tokens.Invalidate(tok)

		tok, err = c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		status, body, err = c.do(ctx, tok, path, params)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, newAPIError(status, body).Error())
		}
	}

	if status != http.StatusOK {
		return newAPIError(status, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// do performs a single GET round trip and reads the full body.
func (c *Client) do(ctx context.Context, tok, path string, params url.Values) (int, []byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrConnectivity, err)
	}

	c.logger.Debug("kroger api request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return resp.StatusCode, body, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return limit
	}
}
