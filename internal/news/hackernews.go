package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// HackerNewsProvider pulls top stories from the Firebase API. Fetching is a
// two-step walk: the top-story id list, then one request per story.
type HackerNewsProvider struct {
	baseURL string
	limit   int
	client  *http.Client
}

var _ ports.NewsSource = (*HackerNewsProvider)(nil)

// NewHackerNewsProvider builds the provider from configuration.
func NewHackerNewsProvider(cfg config.HackerNewsConfig, client *http.Client) *HackerNewsProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	return &HackerNewsProvider{baseURL: cfg.BaseURL, limit: limit, client: client}
}

// Name identifies the provider in aggregate results.
func (p *HackerNewsProvider) Name() string {
	return "Hacker News"
}

// Fetch returns details for the current top stories.
func (p *HackerNewsProvider) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	var ids []int
	if err := p.getJSON(ctx, p.baseURL+"/v0/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}

	if len(ids) > p.limit {
		ids = ids[:p.limit]
	}

	items := make([]domain.NewsItem, 0, len(ids))
	for _, id := range ids {
		var story struct {
			ID          int    `json:"id"`
			Title       string `json:"title"`
			Text        string `json:"text"`
			URL         string `json:"url"`
			Score       int    `json:"score"`
			Descendants int    `json:"descendants"`
			Time        int64  `json:"time"`
		}
		if err := p.getJSON(ctx, fmt.Sprintf("%s/v0/item/%d.json", p.baseURL, id), &story); err != nil {
			// A single missing story should not discard the rest.
			continue
		}
		if story.Title == "" {
			continue
		}

		summary := "Hacker News discussion"
		if story.Text != "" {
			summary = truncateSummary(story.Text, summaryLimit)
		}
		storyURL := story.URL
		if storyURL == "" {
			storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}

		items = append(items, domain.NewsItem{
			Title:       story.Title,
			Summary:     summary,
			URL:         storyURL,
			Source:      "Hacker News",
			Score:       story.Score,
			Comments:    story.Descendants,
			PublishedAt: time.Unix(story.Time, 0).UTC(),
		})
	}

	return items, nil
}

func (p *HackerNewsProvider) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hacker news returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
