package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

const (
	perplexitySourceName  = "Perplexity AI"
	perplexityDefaultSize = 5
)

var (
	jsonArrayExpr = regexp.MustCompile(`(?s)\[.*\]`)
	boldTitleExpr = regexp.MustCompile(`\*\*(.+?)\*\*`)
	sourceExpr    = regexp.MustCompile(`(?i)Source:\s*(.+)`)
	urlExpr       = regexp.MustCompile(`(?i)URL:\s*(https?://\S+)`)
	numberedExpr  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
)

// PerplexityProvider curates recent stories through the Sonar real-time
// search model. Results are optionally cached to cut API spend.
type PerplexityProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	cache    ports.NewsCache
	logger   *slog.Logger
}

var (
	_ ports.NewsSource      = (*PerplexityProvider)(nil)
	_ ports.TopicNewsSource = (*PerplexityProvider)(nil)
)

// NewPerplexityProvider builds the provider from configuration. Cache may be nil.
func NewPerplexityProvider(cfg config.PerplexityConfig, client *http.Client, cache ports.NewsCache, logger *slog.Logger) *PerplexityProvider {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PerplexityProvider{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   client,
		cache:    cache,
		logger:   logger,
	}
}

// Name identifies the provider in aggregate results.
func (p *PerplexityProvider) Name() string {
	return perplexitySourceName
}

// Fetch returns recent general-technology stories.
func (p *PerplexityProvider) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	return p.FetchTopic(ctx, "technology", perplexityDefaultSize)
}

// FetchTopic returns up to count recent stories about topic.
func (p *PerplexityProvider) FetchTopic(ctx context.Context, topic string, count int) ([]domain.NewsItem, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("perplexity api key not configured")
	}
	if count <= 0 {
		count = perplexityDefaultSize
	}

	cacheKey := fmt.Sprintf("news:perplexity:%s:%d", strings.ToLower(topic), count)
	if p.cache != nil {
		if items, ok := p.cache.Get(ctx, cacheKey); ok {
			p.logger.Debug("perplexity cache hit", "topic", topic, "count", len(items))
			return items, nil
		}
	}

	body, err := json.Marshal(map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a news curator. Return only valid JSON arrays with news items. Be concise and factual."},
			{"role": "user", "content": buildNewsQuery(topic, count)},
		},
		"temperature":              0.2,
		"max_tokens":               1500,
		"return_citations":         true,
		"return_related_questions": false,
		"search_recency_filter":    "day",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal perplexity payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request perplexity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("perplexity error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decode perplexity response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("perplexity returned no content")
	}

	items := parsePerplexityContent(completion.Choices[0].Message.Content, count)
	if p.cache != nil && len(items) > 0 {
		p.cache.Put(ctx, cacheKey, items)
	}
	return items, nil
}

func buildNewsQuery(topic string, count int) string {
	today := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf(`Find the top %d most important and trending news stories about %q from the last 24 hours (%s).

For each story, provide:
1. Title (clear and concise)
2. Summary (2-3 sentences explaining what happened)
3. Source (publication name)
4. URL (direct link to article)

Return ONLY a valid JSON array in this exact format:
[
  {
    "title": "News headline here",
    "summary": "Brief description of the story...",
    "source": "Source publication",
    "url": "https://example.com/article"
  }
]

Requirements:
- Return ONLY the JSON array, no additional text
- Include only verified, recent news from reputable sources
- Prioritize significant developments and trending stories
- Keep summaries factual and concise`, count, topic, today)
}

// parsePerplexityContent extracts structured items from the model output.
// Prefers an embedded JSON array; falls back to a numbered-markdown parser.
func parsePerplexityContent(content string, limit int) []domain.NewsItem {
	if match := jsonArrayExpr.FindString(content); match != "" {
		var raw []struct {
			Title       string `json:"title"`
			Summary     string `json:"summary"`
			Description string `json:"description"`
			Source      string `json:"source"`
			URL         string `json:"url"`
			Link        string `json:"link"`
		}
		if err := json.Unmarshal([]byte(match), &raw); err == nil {
			items := make([]domain.NewsItem, 0, len(raw))
			for _, r := range raw {
				if r.Title == "" {
					continue
				}
				summary := r.Summary
				if summary == "" {
					summary = r.Description
				}
				source := r.Source
				if source == "" {
					source = perplexitySourceName
				}
				itemURL := r.URL
				if itemURL == "" {
					itemURL = r.Link
				}
				items = append(items, domain.NewsItem{
					Title:       r.Title,
					Summary:     summary,
					URL:         itemURL,
					Source:      source,
					PublishedAt: time.Now().UTC(),
				})
			}
			return capItems(items, limit)
		}
	}

	return capItems(parseNumberedSections(content), limit)
}

func parseNumberedSections(content string) []domain.NewsItem {
	var items []domain.NewsItem
	for _, section := range numberedExpr.Split(content, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		title := ""
		if m := boldTitleExpr.FindStringSubmatch(section); m != nil {
			title = strings.TrimSpace(m[1])
		} else if idx := strings.IndexAny(section, "\n\r"); idx > 0 {
			title = strings.TrimSpace(section[:idx])
		}

		summary := boldTitleExpr.ReplaceAllString(section, "")
		summary = sourceExpr.ReplaceAllString(summary, "")
		summary = urlExpr.ReplaceAllString(summary, "")
		summary = strings.TrimSpace(summary)
		summary = strings.TrimPrefix(summary, title)
		summary = strings.TrimSpace(summary)

		source := perplexitySourceName
		if m := sourceExpr.FindStringSubmatch(section); m != nil {
			source = strings.TrimSpace(strings.Split(m[1], "\n")[0])
		}
		itemURL := ""
		if m := urlExpr.FindStringSubmatch(section); m != nil {
			itemURL = strings.TrimSpace(m[1])
		}

		if title == "" || len(summary) <= 20 {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Summary:     truncateSummary(summary, 300),
			URL:         itemURL,
			Source:      source,
			PublishedAt: time.Now().UTC(),
		})
	}
	return items
}

func capItems(items []domain.NewsItem, limit int) []domain.NewsItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
