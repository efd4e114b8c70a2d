package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// HeadlinesProvider pulls top headlines from the keyed News API.
type HeadlinesProvider struct {
	apiKey   string
	baseURL  string
	category string
	pageSize int
	client   *http.Client
}

var _ ports.NewsSource = (*HeadlinesProvider)(nil)

// NewHeadlinesProvider builds the provider from configuration.
func NewHeadlinesProvider(cfg config.NewsAPIConfig, client *http.Client) *HeadlinesProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}
	return &HeadlinesProvider{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		category: cfg.Category,
		pageSize: pageSize,
		client:   client,
	}
}

// Name identifies the provider in aggregate results.
func (p *HeadlinesProvider) Name() string {
	return "News API"
}

// Fetch returns current headlines for the configured category.
func (p *HeadlinesProvider) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("news api key not configured")
	}

	q := url.Values{}
	q.Set("category", p.category)
	q.Set("pageSize", strconv.Itoa(p.pageSize))
	q.Set("apiKey", p.apiKey)
	endpoint := p.baseURL + "/top-headlines?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api returned %s", resp.Status)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
			URL         string `json:"url"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode headlines: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title == "" {
			continue
		}
		summary := a.Description
		if summary == "" {
			summary = truncateSummary(a.Content, summaryLimit)
		}
		items = append(items, domain.NewsItem{
			Title:       a.Title,
			Summary:     summary,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	return items, nil
}
