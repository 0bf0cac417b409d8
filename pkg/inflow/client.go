package inflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"estimator-service/pkg/config"
	"estimator-service/prometheus"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client is the single choke point for calls to the inFlow inventory API.
// Reads go through a bounded TTL cache with per-key coalescing; writes
// always go straight upstream.
type Client struct {
	BaseURL       string
	CompanyID     string
	APIKey        string
	AcceptVersion string
	HTTPClient    *http.Client
	Logger        *zap.Logger

	cache *readCache
	group singleflight.Group
}

// GetOptions controls read behavior. ForceRefresh bypasses and invalidates
// the cache entry for the request; the update protocol sets it so a write
// never builds on a stale version token.
type GetOptions struct {
	ForceRefresh bool
}

// NewClient creates a gateway client from configuration
func NewClient(cfg *config.InFlowConfig, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:       cfg.BaseURL,
		CompanyID:     cfg.CompanyID,
		APIKey:        cfg.APIKey,
		AcceptVersion: cfg.AcceptVersion,
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		Logger:        logger,
		cache:         newReadCache(cfg.CacheTTL, cfg.CacheMaxEntries),
	}
}

// Get issues a cached GET against the inventory API and unmarshals the
// response into out. Concurrent calls for the same key share one upstream
// request; forced reads always get their own round trip.
func (c *Client) Get(ctx context.Context, path string, query url.Values, opts GetOptions, out interface{}) error {
	key := "GET " + path + "?" + query.Encode()

	// A forced read must not join the flight group: an in-flight fetch may
	// have started before the invalidation and would hand back
	// pre-invalidation data, which a write path can never act on.
	if opts.ForceRefresh {
		c.cache.invalidate(key)
		prometheus.CacheMissesCounter.Inc()

		respBody, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return err
		}
		c.cache.set(key, respBody)
		return c.decode(respBody, http.StatusOK, out)
	}

	if body, ok := c.cache.get(key); ok {
		prometheus.CacheHitsCounter.Inc()
		return c.decode(body, http.StatusOK, out)
	}
	prometheus.CacheMissesCounter.Inc()

	body, err, _ := c.group.Do(key, func() (interface{}, error) {
		respBody, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}
		c.cache.set(key, respBody)
		return respBody, nil
	})
	if err != nil {
		return err
	}

	return c.decode(body.([]byte), http.StatusOK, out)
}

// Put issues a write against the inventory API. Writes bypass the cache and
// never populate it.
func (c *Client) Put(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request payload: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPut, path, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}

	return c.decode(respBody, http.StatusOK, out)
}

// do performs one upstream HTTP round trip and returns the response body.
// Any non-2xx status becomes an UpstreamError carrying status and body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s%s", c.BaseURL, c.CompanyID, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		c.Logger.Error("Failed to create request", zap.Error(err))
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json;version="+c.AcceptVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Logger.Debug("Calling inventory API",
		zap.String("method", method),
		zap.String("path", path))

	defer prometheus.TrackUpstreamRequest(method)(time.Now())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Inventory API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("inflow request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read response body", zap.Error(err))
		return nil, err
	}

	prometheus.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Warn("Inventory API returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// decode unmarshals an upstream body, converting malformed JSON into an
// UpstreamError rather than letting a half-parsed value propagate inward
func (c *Client) decode(body []byte, status int, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.Logger.Error("Malformed inventory API response", zap.Error(err))
		return &UpstreamError{Status: status, Body: "malformed response: " + err.Error()}
	}
	return nil
}

// Product fetches one product snapshot with its BOM lines. A 404 upstream
// becomes a NotFoundError.
func (c *Client) Product(ctx context.Context, productID string, forceRefresh bool) (*ProductSnapshot, error) {
	query := url.Values{}
	query.Set("include", "itemBoms")

	var snapshot ProductSnapshot
	err := c.Get(ctx, "/products/"+productID, query, GetOptions{ForceRefresh: forceRefresh}, &snapshot)
	if err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Resource: "product", ID: productID}
		}
		return nil, err
	}
	return &snapshot, nil
}

// SearchProducts runs a smart-filter product search with cursor pagination
func (c *Client) SearchProducts(ctx context.Context, smart, after string, count int) ([]ProductSnapshot, error) {
	query := url.Values{}
	if smart != "" {
		query.Set("filter[smart]", smart)
	}
	if after != "" {
		query.Set("after", after)
	}
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}
	query.Set("sortBy", "name")
	query.Set("sortOrder", "asc")

	var products []ProductSnapshot
	if err := c.Get(ctx, "/products", query, GetOptions{}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductComponents expands a product's BOM
func (c *Client) ProductComponents(ctx context.Context, productID string) ([]Component, error) {
	snapshot, err := c.Product(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	return snapshot.Components, nil
}

// Categories fetches the full category forest
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.Get(ctx, "/categories", nil, GetOptions{}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Customers runs a smart-filter customer search
func (c *Client) Customers(ctx context.Context, smart string) ([]Contact, error) {
	return c.contacts(ctx, "/customers", smart)
}

// Vendors runs a smart-filter vendor search
func (c *Client) Vendors(ctx context.Context, smart string) ([]Contact, error) {
	return c.contacts(ctx, "/vendors", smart)
}

func (c *Client) contacts(ctx context.Context, path, smart string) ([]Contact, error) {
	query := url.Values{}
	if smart != "" {
		query.Set("filter[smart]", smart)
	}

	var contacts []Contact
	if err := c.Get(ctx, path, query, GetOptions{}, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// PutProduct submits a product write and returns the new snapshot, which
// carries the newly minted version token. Callers should use the returned
// snapshot directly instead of re-fetching.
func (c *Client) PutProduct(ctx context.Context, update ProductUpdate) (*ProductSnapshot, error) {
	var snapshot ProductSnapshot
	if err := c.Put(ctx, "/products", update, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
