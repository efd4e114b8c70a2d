package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// RedditProvider pulls hot posts from a subreddit's public JSON endpoint.
// No API key is required, but Reddit rejects requests without a User-Agent.
type RedditProvider struct {
	baseURL   string
	subreddit string
	limit     int
	client    *http.Client
}

var _ ports.NewsSource = (*RedditProvider)(nil)

// NewRedditProvider builds the provider from configuration.
func NewRedditProvider(cfg config.RedditConfig, client *http.Client) *RedditProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	return &RedditProvider{
		baseURL:   cfg.BaseURL,
		subreddit: cfg.Subreddit,
		limit:     limit,
		client:    client,
	}
}

// Name identifies the provider in aggregate results.
func (p *RedditProvider) Name() string {
	return "Reddit"
}

// Fetch returns the current hot posts.
func (p *RedditProvider) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%s", p.baseURL, p.subreddit, strconv.Itoa(p.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request subreddit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					Title       string  `json:"title"`
					Selftext    string  `json:"selftext"`
					Permalink   string  `json:"permalink"`
					Score       int     `json:"score"`
					NumComments int     `json:"num_comments"`
					CreatedUTC  float64 `json:"created_utc"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode subreddit: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		post := child.Data
		if post.Title == "" {
			continue
		}
		summary := "Reddit discussion"
		if post.Selftext != "" {
			summary = truncateSummary(post.Selftext, summaryLimit)
		}
		items = append(items, domain.NewsItem{
			Title:       post.Title,
			Summary:     summary,
			URL:         "https://reddit.com" + post.Permalink,
			Source:      "Reddit",
			Score:       post.Score,
			Comments:    post.NumComments,
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}

	return items, nil
}
