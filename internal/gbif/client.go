// Package gbif imports species and occurrence records from the GBIF API.
package gbif

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
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/ecoatlas/ecoatlas-go/internal/errors"
	"github.com/ecoatlas/ecoatlas-go/internal/logging"
)

// Package-level logger specific to the gbif service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "gbif.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "gbif", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize gbif file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "gbif")
		closeLogger = func() error { return nil }
	}
}

// Animalia kingdom key in the GBIF backbone taxonomy.
const KingdomAnimalia = 1

// Config holds GBIF client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit time.Duration // minimum delay between API calls
	UserAgent string
}

// DefaultConfig returns the default GBIF client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.gbif.org/v1",
		Timeout:   20 * time.Second,
		CacheTTL:  time.Hour,
		RateLimit: 250 * time.Millisecond,
		UserAgent: "EcoAtlas-Go/1.0 (species import)",
	}
}

// SpeciesResult is one taxon from the species search endpoint.
type SpeciesResult struct {
	Key            int64  `json:"key"`
	ScientificName string `json:"scientificName"`
	VernacularName string `json:"vernacularName"`
	Kingdom        string `json:"kingdom"`
	Rank           string `json:"rank"`
}

// OccurrenceResult is one record from the occurrence search endpoint.
type OccurrenceResult struct {
	Key              int64    `json:"key"`
	DecimalLatitude  *float64 `json:"decimalLatitude"`
	DecimalLongitude *float64 `json:"decimalLongitude"`
	Year             *int     `json:"year"`
	Country          string   `json:"country"`
}

type speciesSearchResponse struct {
	Results []SpeciesResult `json:"results"`
	Count   int64           `json:"count"`
}

type occurrenceSearchResponse struct {
	Results []OccurrenceResult `json:"results"`
	Count   int64              `json:"count"`
}

// Client talks to the GBIF API, rate limited and memoized.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
}

// NewClient creates a new GBIF client. Zero config values fall back to
// defaults.
func NewClient(config Config) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.RateLimit == 0 {
		config.RateLimit = defaults.RateLimit
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:   cache.New(config.CacheTTL, config.CacheTTL*2),
		limiter: rate.NewLimiter(rate.Every(config.RateLimit), 1),
	}

	logger.Info("GBIF client initialized",
		"base_url", config.BaseURL,
		"rate_limit", config.RateLimit,
		"cache_ttl", config.CacheTTL)

	return client
}

// SearchSpecies lists taxa of a kingdom from the species search endpoint.
func (c *Client) SearchSpecies(ctx context.Context, kingdomKey, limit, offset int) ([]SpeciesResult, error) {
	cacheKey := fmt.Sprintf("species:%d:%d:%d", kingdomKey, limit, offset)
	if cached, found := c.cache.Get(cacheKey); found {
		if results, ok := cached.([]SpeciesResult); ok {
			logger.Debug("Species search cache hit", "cache_key", cacheKey)
			return results, nil
		}
	}

	params := url.Values{}
	params.Set("kingdomKey", strconv.Itoa(kingdomKey))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	requestURL := fmt.Sprintf("%s/species/search?%s", c.config.BaseURL, params.Encode())

	var response speciesSearchResponse
	if err := c.doRequest(ctx, requestURL, &response); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, response.Results, cache.DefaultExpiration)

	logger.Debug("Species search complete",
		"kingdom_key", kingdomKey,
		"returned", len(response.Results),
		"total", response.Count)

	return response.Results, nil
}

// SearchOccurrences lists georeferenced occurrences for a taxon.
func (c *Client) SearchOccurrences(ctx context.Context, taxonKey int64, limit int) ([]OccurrenceResult, error) {
	cacheKey := fmt.Sprintf("occurrences:%d:%d", taxonKey, limit)
	if cached, found := c.cache.Get(cacheKey); found {
		if results, ok := cached.([]OccurrenceResult); ok {
			logger.Debug("Occurrence search cache hit", "cache_key", cacheKey)
			return results, nil
		}
	}

	params := url.Values{}
	params.Set("taxonKey", strconv.FormatInt(taxonKey, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("hasCoordinate", "true")
	requestURL := fmt.Sprintf("%s/occurrence/search?%s", c.config.BaseURL, params.Encode())

	var response occurrenceSearchResponse
	if err := c.doRequest(ctx, requestURL, &response); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, response.Results, cache.DefaultExpiration)

	logger.Debug("Occurrence search complete",
		"taxon_key", taxonKey,
		"returned", len(response.Results))

	return response.Results, nil
}

// doRequest waits for the rate limiter, performs one GET request and
// decodes the JSON body into out.
func (c *Client) doRequest(ctx context.Context, requestURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.New(err).
			Component("gbif").
			Category(errors.CategoryLimit).
			Build()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return errors.New(err).
			Component("gbif").
			Category(errors.CategoryNetwork).
			NetworkContext(requestURL, c.config.Timeout).
			Build()
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.New(err).
			Component("gbif").
			Category(errors.CategoryNetwork).
			NetworkContext(requestURL, c.config.Timeout).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("gbif: unexpected status %d", resp.StatusCode).
			Component("gbif").
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			NetworkContext(requestURL, c.config.Timeout).
			Build()
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New(err).
			Component("gbif").
			Category(errors.CategoryFileParsing).
			Context("reason", "response_decode").
			Build()
	}

	return nil
}
