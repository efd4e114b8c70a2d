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

// GitHubProvider surfaces trending repositories via the unkeyed search API,
// sorted by stars for the configured language.
type GitHubProvider struct {
	baseURL  string
	language string
	limit    int
	client   *http.Client
}

var _ ports.NewsSource = (*GitHubProvider)(nil)

// NewGitHubProvider builds the provider from configuration.
func NewGitHubProvider(cfg config.GitHubConfig, client *http.Client) *GitHubProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	return &GitHubProvider{
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		limit:    limit,
		client:   client,
	}
}

// Name identifies the provider in aggregate results.
func (p *GitHubProvider) Name() string {
	return "GitHub"
}

// Fetch returns the most-starred repositories for the configured language.
func (p *GitHubProvider) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	q := url.Values{}
	q.Set("q", "language:"+p.language)
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", strconv.Itoa(p.limit))
	endpoint := p.baseURL + "/search/repositories?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned %s", resp.Status)
	}

	var payload struct {
		Items []struct {
			Name            string    `json:"name"`
			Description     string    `json:"description"`
			HTMLURL         string    `json:"html_url"`
			StargazersCount int       `json:"stargazers_count"`
			Language        string    `json:"language"`
			UpdatedAt       time.Time `json:"updated_at"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode repositories: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(payload.Items))
	for _, repo := range payload.Items {
		if repo.Name == "" {
			continue
		}
		summary := repo.Description
		if summary == "" {
			summary = "GitHub repository"
		}
		items = append(items, domain.NewsItem{
			Title:       repo.Name,
			Summary:     truncateSummary(summary, summaryLimit),
			URL:         repo.HTMLURL,
			Source:      "GitHub",
			Stars:       repo.StargazersCount,
			Language:    repo.Language,
			PublishedAt: repo.UpdatedAt,
		})
	}

	return items, nil
}
