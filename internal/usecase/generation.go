// Package usecase holds the generation and dispatch flows that tie news
// aggregation, drafting, and delivery together.
package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"soulthread/internal/domain"
	"soulthread/internal/news"
	"soulthread/internal/ports"
)

// ErrMissingUserID rejects generation requests without a user.
var ErrMissingUserID = errors.New("userId is required")

const (
	// mockSliceSize is how many curated items a mock-data request gets.
	mockSliceSize = 8
	// fallbackSliceSize is the smaller curated slice used when a real-time
	// fetch comes back empty.
	fallbackSliceSize = 5
)

// Newsletter orchestrates a single generation pass: choose a data source,
// choose a generator, and fall back to the template when the model path is
// unavailable or fails. The template path cannot fail, so Generate only
// errors on invalid input.
type Newsletter struct {
	profiles   ports.ProfileStore
	aggregator ports.NewsAggregator
	template   ports.TemplateRenderer
	ai         ports.DraftGenerator
	logger     *slog.Logger
	now        func() time.Time
}

// NewsletterDeps lists the orchestrator collaborators. Profiles and AI may be
// nil; the pipeline degrades to defaults and the template path.
type NewsletterDeps struct {
	Profiles   ports.ProfileStore
	Aggregator ports.NewsAggregator
	Template   ports.TemplateRenderer
	AI         ports.DraftGenerator
	Logger     *slog.Logger
}

// NewNewsletter wires the orchestrator.
func NewNewsletter(deps NewsletterDeps) *Newsletter {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Newsletter{
		profiles:   deps.Profiles,
		aggregator: deps.Aggregator,
		template:   deps.Template,
		ai:         deps.AI,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate runs one pipeline pass. For non-streaming requests the result
// envelope carries the full draft and the reader is nil. For streaming
// requests that reach the model, the reader yields tokens and the envelope's
// Content is empty; if streaming cannot start, the call degrades to a
// non-streaming template draft.
func (n *Newsletter) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, io.ReadCloser, error) {
	if req.UserID == "" {
		return nil, nil, ErrMissingUserID
	}

	profile := n.loadProfile(ctx, req.UserID)

	items, dataSource := n.collectNews(ctx, req)

	topic := req.Topic
	if topic == "" && profile != nil && profile.Topics != "" {
		topic = profile.Topics
	}
	if topic == "" {
		topic = "general"
	}

	result := &domain.GenerationResult{
		GeneratedAt:   n.now(),
		DataSource:    dataSource,
		Topic:         topic,
		NewsItemCount: len(items),
	}

	useTemplate := req.UseTemplate || n.ai == nil || !n.ai.Configured()

	if !useTemplate && req.Stream {
		stream, err := n.ai.GenerateStream(ctx, profile, items)
		if err == nil {
			result.AIGenerated = true
			return result, stream, nil
		}
		n.logger.Warn("ai stream unavailable, falling back to template",
			"userId", req.UserID, "error", err)
		useTemplate = true
	}

	if !useTemplate {
		content, err := n.ai.Generate(ctx, profile, items)
		if err == nil {
			result.Content = content
			result.AIGenerated = true
			return result, nil, nil
		}
		n.logger.Warn("ai generation failed, falling back to template",
			"userId", req.UserID, "error", err)
	}

	result.Content = n.template.Render(profile, items)
	result.TemplateGenerated = true
	return result, nil, nil
}

// loadProfile fetches the newest voice profile; lookup failures degrade to a
// nil profile rather than blocking generation.
func (n *Newsletter) loadProfile(ctx context.Context, userID string) *domain.VoiceProfile {
	if n.profiles == nil {
		return nil
	}
	profile, err := n.profiles.LatestProfile(ctx, userID)
	if err != nil {
		n.logger.Warn("voice profile lookup failed", "userId", userID, "error", err)
		return nil
	}
	return profile
}

// collectNews resolves the item set and the data source label. The label
// reports where the items actually came from: a real-time request that ends
// up on curated items is labeled mock.
func (n *Newsletter) collectNews(ctx context.Context, req domain.GenerationRequest) ([]domain.NewsItem, string) {
	if !req.UseRealTimeData || n.aggregator == nil {
		return news.Curated(mockSliceSize), domain.DataSourceMock
	}

	bundle := n.aggregator.FetchAll(ctx)
	items := news.FilterByTopic(bundle.All, req.Topic)
	if len(items) == 0 {
		n.logger.Warn("real-time aggregation yielded no items, using curated set",
			"userId", req.UserID, "topic", req.Topic)
		return news.Curated(fallbackSliceSize), domain.DataSourceMock
	}
	return items, domain.DataSourceRealTime
}
