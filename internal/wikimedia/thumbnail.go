package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ecoatlas/ecoatlas-go/internal/errors"
)

// DefaultCommonsAPIURL is the Commons action API endpoint.
const DefaultCommonsAPIURL = "https://commons.wikimedia.org/w/api.php"

// ErrNoPhoto is returned when no thumbnail exists for a name. Callers
// treat it as an expected miss.
var ErrNoPhoto = errors.Newf("wikimedia: no photo found").
	Component("wikimedia").
	Category(errors.CategoryNotFound).
	Build()

// ThumbnailConfig holds thumbnail provider configuration
type ThumbnailConfig struct {
	APIURL    string
	Size      int // pithumbsize, pixels
	Timeout   time.Duration
	UserAgent string
}

// DefaultThumbnailConfig returns the default thumbnail provider configuration
func DefaultThumbnailConfig() ThumbnailConfig {
	return ThumbnailConfig{
		APIURL:    DefaultCommonsAPIURL,
		Size:      800,
		Timeout:   10 * time.Second,
		UserAgent: "EcoAtlas-Go/1.0 (species enrichment)",
	}
}

// ThumbnailProvider fetches a rendered thumbnail URL for a page title
// through the Commons pageimages API. All failures collapse to ErrNoPhoto.
type ThumbnailProvider struct {
	config     ThumbnailConfig
	httpClient *http.Client
}

// NewThumbnailProvider creates a thumbnail provider. Zero config values
// fall back to defaults.
func NewThumbnailProvider(config ThumbnailConfig) *ThumbnailProvider {
	defaults := DefaultThumbnailConfig()
	if config.APIURL == "" {
		config.APIURL = defaults.APIURL
	}
	if config.Size == 0 {
		config.Size = defaults.Size
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	return &ThumbnailProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// thumbnailResponse is the pageimages wire format.
type thumbnailResponse struct {
	Query struct {
		Pages map[string]struct {
			Thumbnail *struct {
				Source string `json:"source"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchPhoto implements PhotoProvider. The page lookup uses the name as a
// title; the first page carrying a thumbnail wins.
func (p *ThumbnailProvider) FetchPhoto(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrNoPhoto
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "pageimages")
	params.Set("piprop", "thumbnail")
	params.Set("pithumbsize", strconv.Itoa(p.config.Size))
	params.Set("titles", name)
	requestURL := p.config.APIURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		logger.Debug("Thumbnail request build failed", "name", name, "error", err)
		return "", ErrNoPhoto
	}
	req.Header.Set("User-Agent", p.config.UserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.Debug("Thumbnail request failed", "name", name, "error", err)
		return "", ErrNoPhoto
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("Thumbnail request returned non-OK status",
			"name", name,
			"status_code", resp.StatusCode)
		return "", ErrNoPhoto
	}

	var result thumbnailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Debug("Thumbnail response decode failed", "name", name, "error", err)
		return "", ErrNoPhoto
	}

	for _, page := range result.Query.Pages {
		if page.Thumbnail != nil && page.Thumbnail.Source != "" {
			logger.Debug("Thumbnail found",
				"name", name,
				"url", page.Thumbnail.Source,
				"size", fmt.Sprintf("%dx%d", page.Thumbnail.Width, page.Thumbnail.Height))
			return page.Thumbnail.Source, nil
		}
	}

	logger.Debug("No thumbnail in response", "name", name)
	return "", ErrNoPhoto
}
