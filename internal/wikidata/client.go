// Package wikidata resolves species names to Wikidata entities and extracts
// typed biological facts from their claims.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ecoatlas/ecoatlas-go/internal/errors"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

// Package-level logger specific to the wikidata service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "wikidata.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "wikidata", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize wikidata file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "wikidata")
		closeLogger = func() error { return nil }
	}
}

// ErrNoMatch is returned by Resolve when a name cannot be mapped to an
// entity for any reason. Callers treat it as an expected miss.
var ErrNoMatch = errors.Newf("wikidata: no matching entity").
	Component("wikidata").
	Category(errors.CategoryNotFound).
	Build()

// Client talks to the Wikidata APIs with memoization.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache

	// Metrics
	metrics struct {
		apiCalls    int64
		cacheHits   int64
		cacheMisses int64
		apiErrors   int64
		mu          sync.RWMutex
	}
}

// NewClient creates a new Wikidata client. Zero config values fall back to
// defaults.
func NewClient(config Config) *Client {
	defaults := DefaultConfig()
	if config.SearchURL == "" {
		config.SearchURL = defaults.SearchURL
	}
	if config.EntityURL == "" {
		config.EntityURL = defaults.EntityURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache: cache.New(config.CacheTTL, config.CacheTTL*2),
	}

	logger.Info("Wikidata client initialized",
		"search_url", config.SearchURL,
		"timeout", config.Timeout,
		"cache_ttl", config.CacheTTL)

	return client
}

// Close cleans up client resources.
func (c *Client) Close() {
	logger.Info("Closing Wikidata client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing wikidata logger: %v", err)
		}
	}
}

// Resolve maps a species name to a Wikidata entity id via wbsearchentities
// with limit 1. Every failure mode, whether an empty name, a transport
// error, a non-2xx response, a decode failure or zero hits, collapses to
// ErrNoMatch so that callers never see transient detail.
func (c *Client) Resolve(ctx context.Context, name string) (EntityID, error) {
	if name == "" {
		return "", ErrNoMatch
	}

	cacheKey := fmt.Sprintf("resolve:%s", name)
	if cached, found := c.cache.Get(cacheKey); found {
		if id, ok := cached.(EntityID); ok {
			c.recordCacheHit()
			logger.Debug("Resolution cache hit", "name", name, "entity_id", id)
			return id, nil
		}
	}
	c.recordCacheMiss()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("language", "en")
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("search", name)
	requestURL := c.config.SearchURL + "?" + params.Encode()

	var result searchResponse
	if err := c.doRequest(reqCtx, requestURL, &result); err != nil {
		logger.Debug("Entity resolution failed", "name", name, "error", err)
		return "", ErrNoMatch
	}

	if len(result.Search) == 0 {
		logger.Debug("No entity found for name", "name", name)
		return "", ErrNoMatch
	}

	id := EntityID(result.Search[0].ID)
	c.cache.Set(cacheKey, id, cache.DefaultExpiration)

	logger.Debug("Resolved name to entity", "name", name, "entity_id", id)
	return id, nil
}

// FetchEntity retrieves the full entity document for an id.
func (c *Client) FetchEntity(ctx context.Context, id EntityID) (*Entity, error) {
	if id == "" {
		return nil, errors.Newf("wikidata: empty entity id").
			Component("wikidata").
			Category(errors.CategoryValidation).
			Build()
	}

	cacheKey := fmt.Sprintf("entity:%s", id)
	if cached, found := c.cache.Get(cacheKey); found {
		if entity, ok := cached.(*Entity); ok {
			c.recordCacheHit()
			logger.Debug("Entity cache hit", "entity_id", id)
			return entity, nil
		}
	}
	c.recordCacheMiss()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestURL := fmt.Sprintf(c.config.EntityURL, id)

	var result entityResponse
	if err := c.doRequest(reqCtx, requestURL, &result); err != nil {
		return nil, err
	}

	entity, ok := result.Entities[string(id)]
	if !ok {
		return nil, errors.Newf("wikidata: entity %s missing from response", id).
			Component("wikidata").
			Category(errors.CategoryNotFound).
			Context("entity_id", string(id)).
			Build()
	}

	c.cache.Set(cacheKey, &entity, cache.DefaultExpiration)

	logger.Debug("Fetched entity", "entity_id", id, "claim_properties", len(entity.Claims))
	return &entity, nil
}

// doRequest performs one GET request and decodes the JSON body into out.
// No retries: a species that fails enrichment now is retried on the next
// pipeline pass.
func (c *Client) doRequest(ctx context.Context, requestURL string, out any) error {
	c.recordAPICall()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		c.recordAPIError()
		return errors.New(err).
			Component("wikidata").
			Category(errors.CategoryNetwork).
			NetworkContext(requestURL, c.config.Timeout).
			Build()
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordAPIError()
		return errors.New(err).
			Component("wikidata").
			Category(getErrorCategory(0)).
			NetworkContext(requestURL, c.config.Timeout).
			Timing("api_request", time.Since(start)).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		c.recordAPIError()
		return errors.Newf("wikidata: unexpected status %d", resp.StatusCode).
			Component("wikidata").
			Category(getErrorCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			NetworkContext(requestURL, c.config.Timeout).
			Build()
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.recordAPIError()
		return errors.New(err).
			Component("wikidata").
			Category(errors.CategoryClaimExtraction).
			Context("reason", "response_decode").
			Build()
	}

	return nil
}

// getErrorCategory maps an HTTP status to an error category. Status 0
// means the request never produced a response.
func getErrorCategory(statusCode int) errors.ErrorCategory {
	switch {
	case statusCode == 0:
		return errors.CategoryNetwork
	case statusCode == http.StatusNotFound:
		return errors.CategoryNotFound
	case statusCode == http.StatusTooManyRequests:
		return errors.CategoryLimit
	case statusCode >= 500:
		return errors.CategoryNetwork
	default:
		return errors.CategoryHTTP
	}
}

func (c *Client) recordAPICall() {
	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	c.metrics.mu.Unlock()
}

func (c *Client) recordAPIError() {
	c.metrics.mu.Lock()
	c.metrics.apiErrors++
	c.metrics.mu.Unlock()
}

func (c *Client) recordCacheHit() {
	c.metrics.mu.Lock()
	c.metrics.cacheHits++
	c.metrics.mu.Unlock()
}

func (c *Client) recordCacheMiss() {
	c.metrics.mu.Lock()
	c.metrics.cacheMisses++
	c.metrics.mu.Unlock()
}

// Metrics returns a snapshot of client counters.
func (c *Client) Metrics() (apiCalls, cacheHits, cacheMisses, apiErrors int64) {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()
	return c.metrics.apiCalls, c.metrics.cacheHits, c.metrics.cacheMisses, c.metrics.apiErrors
}
