package news

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// Aggregator fans out to all registered sources concurrently. One provider's
// failure yields zero items from that provider; the aggregate never errors.
// Items are concatenated in fetch-completion order, so callers must not rely
// on a particular interleaving across providers.
type Aggregator struct {
	sources []ports.NewsSource
	logger  *slog.Logger
}

var _ ports.NewsAggregator = (*Aggregator)(nil)

// NewAggregator wires the provider set.
func NewAggregator(sources []ports.NewsSource, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{sources: sources, logger: logger}
}

// FetchAll collects items from every source.
func (a *Aggregator) FetchAll(ctx context.Context) domain.NewsBundle {
	bundle := domain.NewsBundle{BySource: make(map[string][]domain.NewsItem, len(a.sources))}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, source := range a.sources {
		wg.Add(1)
		go func(src ports.NewsSource) {
			defer wg.Done()

			items, err := src.Fetch(ctx)
			if err != nil {
				a.logger.Warn("news source degraded", "source", src.Name(), "error", err)
				items = nil
			}

			mu.Lock()
			bundle.BySource[src.Name()] = items
			bundle.All = append(bundle.All, items...)
			mu.Unlock()
		}(source)
	}
	wg.Wait()

	a.logger.Info("news aggregation complete", "sources", len(a.sources), "items", len(bundle.All))
	return bundle
}

// FilterByTopic keeps items whose title or summary contains topic,
// case-insensitively. An empty topic keeps everything.
func FilterByTopic(items []domain.NewsItem, topic string) []domain.NewsItem {
	if topic == "" {
		return items
	}

	needle := strings.ToLower(topic)
	filtered := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Summary), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
