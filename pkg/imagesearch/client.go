package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"vibe-curation-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// Provider is the image-search boundary: ranked image metadata for a text
// query and page. Implementations must return items in provider rank order.
type Provider interface {
	Search(ctx context.Context, query string, page int) ([]store.Item, error)
}

type Config struct {
	BaseURL  string
	License  string // comma-separated license filter, e.g. "cc0,by,by-sa"
	PageSize int
	// Timeout is the per-request server-side budget, deliberately shorter
	// than the enrichment timeout so the optimistic path stays snappy.
	Timeout    time.Duration
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.openverse.org/v1",
		License:    "cc0,by,by-sa",
		PageSize:   20,
		Timeout:    8 * time.Second,
		RetryDelay: 400 * time.Millisecond,
		CacheTTL:   90 * time.Second,
	}
}

// Client queries an Openverse-compatible image catalog. Successful pages are
// cached briefly so rapid accept/reject bursts against the same refined query
// do not hammer the provider.
type Client struct {
	cfg    Config
	http   *http.Client
	cache  *cache.Cache
	logger *log.Logger
}

var _ Provider = &Client{}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache.New(cfg.CacheTTL, 5*time.Minute),
		logger: logger,
	}
}

// itemRecord is the tolerant wire shape: missing optional fields default to
// empty strings, records without an id are dropped during mapping.
type itemRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Thumbnail      string `json:"thumbnail"`
	URL            string `json:"url"`
	Creator        string `json:"creator"`
	CreatorURL     string `json:"creator_url"`
	License        string `json:"license"`
	LicenseVersion string `json:"license_version"`
	Source         string `json:"source"`
}

type searchPayload struct {
	Results []itemRecord `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, page int) ([]store.Item, error) {
	key := fmt.Sprintf("%s|%d", query, page)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]store.Item), nil
	}

	items, err := c.search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, items, cache.DefaultExpiration)
	return items, nil
}

func (c *Client) search(ctx context.Context, query string, page int) ([]store.Item, error) {
	items, retryable, err := c.attempt(ctx, query, page)
	if err != nil && retryable {
		c.logger.Printf("[WARN] image search attempt failed, retrying once: %v", err)
		select {
		case <-ctx.Done():
			return nil, &TransientError{Err: ctx.Err()}
		case <-time.After(c.cfg.RetryDelay):
		}
		items, _, err = c.attempt(ctx, query, page)
	}
	return items, err
}

// attempt performs a single provider request. The bool reports whether the
// failure class is eligible for the one bounded retry (5xx and transport
// errors only, never 429).
func (c *Client) attempt(ctx context.Context, query string, page int) ([]store.Item, bool, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("page", strconv.Itoa(page))
	params.Add("page_size", strconv.Itoa(c.cfg.PageSize))
	if c.cfg.License != "" {
		params.Add("license", c.cfg.License)
	}

	endpoint := c.cfg.BaseURL + "/images/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, false, &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return nil, true, &UpstreamError{StatusCode: resp.StatusCode}
	default:
		return nil, false, &UpstreamError{StatusCode: resp.StatusCode}
	}

	var payload searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, true, &TransientError{Err: fmt.Errorf("decode search response: %w", err)}
	}

	items := make([]store.Item, 0, len(payload.Results))
	for _, rec := range payload.Results {
		if rec.ID == "" {
			continue
		}
		items = append(items, store.Item{
			ID:             rec.ID,
			Title:          rec.Title,
			Thumbnail:      rec.Thumbnail,
			URL:            rec.URL,
			Creator:        rec.Creator,
			CreatorURL:     rec.CreatorURL,
			License:        rec.License,
			LicenseVersion: rec.LicenseVersion,
			Source:         rec.Source,
		})
	}
	return items, false, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
