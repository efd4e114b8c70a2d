package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"soulthread/internal/domain"
	"soulthread/internal/news"
	"soulthread/internal/ports"
)

const (
	defaultMaxItems  = 8
	maxSummaryErrors = 10
	subjectTitleCap  = 60
)

// DispatchSummary reports one scheduled run.
type DispatchSummary struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	TotalUsers       int      `json:"totalUsers"`
	Generated        int      `json:"generated"`
	GenerationErrors int      `json:"generationErrors"`
	Sent             int      `json:"sent"`
	Failed           int      `json:"failed"`
	Errors           []string `json:"errors,omitempty"`
	DurationMs       int64    `json:"durationMs"`
}

// Dispatcher runs the scheduled delivery flow: find users due this hour,
// generate each one's newsletter, and hand the batch to the mailer.
type Dispatcher struct {
	prefs      ports.PreferenceStore
	profiles   ports.ProfileStore
	aggregator ports.NewsAggregator
	topical    ports.TopicNewsSource
	template   ports.TemplateRenderer
	ai         ports.DraftGenerator
	batcher    ports.BatchMailer
	logger     *slog.Logger
}

// DispatcherDeps lists the dispatch collaborators. Topical and AI may be nil.
type DispatcherDeps struct {
	Prefs      ports.PreferenceStore
	Profiles   ports.ProfileStore
	Aggregator ports.NewsAggregator
	Topical    ports.TopicNewsSource
	Template   ports.TemplateRenderer
	AI         ports.DraftGenerator
	Batcher    ports.BatchMailer
	Logger     *slog.Logger
}

// NewDispatcher wires the scheduled delivery flow.
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		prefs:      deps.Prefs,
		profiles:   deps.Profiles,
		aggregator: deps.Aggregator,
		topical:    deps.Topical,
		template:   deps.Template,
		ai:         deps.AI,
		batcher:    deps.Batcher,
		logger:     logger,
	}
}

// Run executes one scheduled pass for the hour of now (UTC). Only a
// preference lookup failure is fatal; per-user generation failures are
// counted and the run continues.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (*DispatchSummary, error) {
	start := time.Now()
	hour := now.UTC().Hour()

	prefs, err := d.prefs.PreferencesForHour(ctx, hour)
	if err != nil {
		return nil, fmt.Errorf("load preferences for hour %d: %w", hour, err)
	}

	summary := &DispatchSummary{TotalUsers: len(prefs)}
	if len(prefs) == 0 {
		summary.Success = true
		summary.Message = fmt.Sprintf("no users scheduled for hour %d", hour)
		summary.DurationMs = time.Since(start).Milliseconds()
		return summary, nil
	}

	d.logger.Info("newsletter dispatch starting", "hour", hour, "users", len(prefs))

	recipients := make([]domain.EmailRecipient, 0, len(prefs))
	jobs := make(map[string]domain.NewsletterEmail, len(prefs))
	var errs []string

	var bundle *domain.NewsBundle
	for _, pref := range prefs {
		email, err := d.generateFor(ctx, pref, &bundle)
		if err != nil {
			summary.GenerationErrors++
			errs = append(errs, fmt.Sprintf("user %s: %v", pref.UserID, err))
			d.logger.Warn("newsletter generation failed", "userId", pref.UserID, "error", err)
			continue
		}
		summary.Generated++
		recipients = append(recipients, domain.EmailRecipient{
			UserID: pref.UserID,
			Email:  pref.Email,
			Name:   pref.Name,
		})
		jobs[pref.UserID] = *email
	}

	if len(recipients) > 0 {
		result := d.batcher.SendBatch(ctx, recipients, jobs)
		summary.Sent = result.Sent
		summary.Failed = result.Failed
		errs = append(errs, result.Errors...)
	}

	if len(errs) > maxSummaryErrors {
		errs = errs[:maxSummaryErrors]
	}
	summary.Errors = errs
	summary.Success = true
	summary.Message = fmt.Sprintf("dispatched newsletters for hour %d", hour)
	summary.DurationMs = time.Since(start).Milliseconds()

	d.logger.Info("newsletter dispatch finished",
		"hour", hour,
		"generated", summary.Generated,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"durationMs", summary.DurationMs)
	return summary, nil
}

// generateFor builds one user's newsletter. The shared aggregation bundle is
// fetched lazily on first need and reused across users in the run. A
// preference row without a delivery address cannot be served and fails here,
// before any generation work.
func (d *Dispatcher) generateFor(ctx context.Context, pref domain.EmailPreference, bundle **domain.NewsBundle) (*domain.NewsletterEmail, error) {
	if pref.Email == "" {
		return nil, fmt.Errorf("missing email address")
	}

	profile := d.loadProfile(ctx, pref.UserID)

	maxItems := pref.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	topic := ""
	if len(pref.Topics) > 0 {
		topic = pref.Topics[0]
	}

	items, sources := d.collectFor(ctx, pref, topic, maxItems, bundle)
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	content := ""
	method := domain.MethodTemplate
	if pref.UseAI && d.ai != nil && d.ai.Configured() {
		draft, err := d.ai.Generate(ctx, profile, items)
		if err != nil {
			d.logger.Warn("ai generation failed for scheduled send, using template",
				"userId", pref.UserID, "error", err)
		} else {
			content = draft
			method = domain.MethodAI
		}
	}
	if content == "" {
		content = d.template.Render(profile, items)
	}

	return &domain.NewsletterEmail{
		Subject:          dispatchSubject(items),
		Content:          content,
		NewsItemCount:    len(items),
		GenerationMethod: method,
		DataSources:      sources,
	}, nil
}

// collectFor resolves the item set for one user: a preferred topical source
// first, the shared aggregate to fill remaining slots, and the curated set
// when everything else comes back empty.
func (d *Dispatcher) collectFor(ctx context.Context, pref domain.EmailPreference, topic string, maxItems int, bundle **domain.NewsBundle) ([]domain.NewsItem, []string) {
	var items []domain.NewsItem
	var sources []string

	if d.topical != nil && preferredSource(pref.PreferredSources, "perplexity") {
		topical, err := d.topical.FetchTopic(ctx, topicOrDefault(topic), maxItems)
		if err != nil {
			d.logger.Warn("topical source degraded", "userId", pref.UserID, "error", err)
		} else if len(topical) > 0 {
			items = append(items, topical...)
			sources = append(sources, "perplexity")
		}
	}

	if len(items) < maxItems && d.aggregator != nil {
		if *bundle == nil {
			b := d.aggregator.FetchAll(ctx)
			*bundle = &b
		}
		filtered := news.FilterByTopic((*bundle).All, topic)
		if len(filtered) > 0 {
			items = append(items, filtered...)
			sources = append(sources, "aggregate")
		}
	}

	if len(items) == 0 {
		items = news.Curated(fallbackSliceSize)
		sources = []string{"curated"}
	}
	return items, sources
}

func (d *Dispatcher) loadProfile(ctx context.Context, userID string) *domain.VoiceProfile {
	if d.profiles == nil {
		return nil
	}
	profile, err := d.profiles.LatestProfile(ctx, userID)
	if err != nil {
		d.logger.Warn("voice profile lookup failed", "userId", userID, "error", err)
		return nil
	}
	return profile
}

// dispatchSubject derives the email subject from the lead story.
func dispatchSubject(items []domain.NewsItem) string {
	if len(items) == 0 {
		return "📰 Your Newsletter Update"
	}
	title := items[0].Title
	if runes := []rune(title); len(runes) > subjectTitleCap {
		title = string(runes[:subjectTitleCap]) + "..."
	}
	return "📰 " + title
}

func preferredSource(sources []string, name string) bool {
	for _, s := range sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return "technology"
	}
	return topic
}
