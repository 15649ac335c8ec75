// Package feed retrieves social posts for the scan phase. The engine only
// sees the domain.SocialFeed boundary; everything platform-specific stays in
// here.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// DefaultBaseURL is the X API v2 root.
const DefaultBaseURL = "https://api.twitter.com"

// rateKey is the limiter bucket shared by all feed searches.
const rateKey = "feed:search"

// TwitterConfig configures the recent-search client.
type TwitterConfig struct {
	BaseURL     string
	BearerToken string
	RateLimit   int           // searches allowed per window, 0 disables
	RateWindow  time.Duration
}

// TwitterClient queries the X API v2 recent-search endpoint. An optional
// distributed rate limiter keeps multiple replicas inside the shared API
// quota.
type TwitterClient struct {
	cfg        TwitterConfig
	httpClient *http.Client
	limiter    domain.RateLimiter
}

// NewTwitterClient creates a TwitterClient. limiter may be nil.
func NewTwitterClient(cfg TwitterConfig, limiter domain.RateLimiter) *TwitterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwitterClient{
		cfg:     cfg,
		limiter: limiter,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiTweet is one tweet as returned by the v2 search endpoint.
type apiTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

// searchResponse is the envelope of /2/tweets/search/recent.
type searchResponse struct {
	Data []apiTweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// Search returns recent posts matching the query, newest first, as delivered
// by the platform. An exhausted rate budget surfaces as domain.ErrRateLimited
// so callers can degrade to an empty scan.
func (c *TwitterClient) Search(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	if c.limiter != nil && c.cfg.RateLimit > 0 {
		ok, err := c.limiter.Allow(ctx, rateKey, c.cfg.RateLimit, c.cfg.RateWindow)
		if err != nil {
			return nil, fmt.Errorf("feed: rate limiter: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("feed: %w: search quota spent", domain.ErrRateLimited)
		}
	}

	// The endpoint accepts max_results in [10, 100].
	if limit < 10 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("tweet.fields", "created_at,author_id")
	path := "/2/tweets/search/recent?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("feed: search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feed: decode search results: %w", err)
	}

	posts := make([]domain.Post, 0, len(resp.Data))
	for _, tw := range resp.Data {
		createdAt, _ := time.Parse(time.RFC3339, tw.CreatedAt)
		posts = append(posts, domain.Post{
			ID:        tw.ID,
			Text:      tw.Text,
			Author:    tw.AuthorID,
			CreatedAt: createdAt,
		})
	}
	return posts, nil
}

// doGet sends a bearer-authenticated GET request to the X API.
func (c *TwitterClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
