package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// RSSProvider pulls items from configured syndication feeds. Feed descriptions
// often carry embedded HTML, so summaries pass through a text extraction step.
type RSSProvider struct {
	feeds  []config.RSSFeedConfig
	limit  int
	parser *gofeed.Parser
}

var _ ports.NewsSource = (*RSSProvider)(nil)

// NewRSSProvider builds the provider; limit bounds items per feed.
func NewRSSProvider(feeds []config.RSSFeedConfig, limit int, client *http.Client) *RSSProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	if limit <= 0 {
		limit = 5
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &RSSProvider{feeds: feeds, limit: limit, parser: parser}
}

// Name identifies the provider in aggregate results.
func (p *RSSProvider) Name() string {
	return "RSS"
}

// Fetch walks every configured feed; a broken feed skips to the next one.
func (p *RSSProvider) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	if len(p.feeds) == 0 {
		return nil, fmt.Errorf("no rss feeds configured")
	}

	var items []domain.NewsItem
	var lastErr error
	for _, feedCfg := range p.feeds {
		feed, err := p.parser.ParseURLWithContext(feedCfg.URL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("feed %s: %w", feedCfg.Name, err)
			continue
		}

		source := feedCfg.Name
		if source == "" {
			source = feed.Title
		}

		count := len(feed.Items)
		if count > p.limit {
			count = p.limit
		}
		for _, entry := range feed.Items[:count] {
			if entry.Title == "" {
				continue
			}
			summary := entry.Description
			if summary == "" {
				summary = entry.Content
			}
			var publishedAt time.Time
			if entry.PublishedParsed != nil {
				publishedAt = *entry.PublishedParsed
			}
			items = append(items, domain.NewsItem{
				Title:       entry.Title,
				Summary:     truncateSummary(htmlToText(summary), summaryLimit),
				URL:         entry.Link,
				Source:      source,
				PublishedAt: publishedAt,
			})
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

// htmlToText strips markup from feed descriptions, leaving plain text.
func htmlToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
