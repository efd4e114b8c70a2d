package ports

import (
	"context"
	"io"
	"time"

	"soulthread/internal/domain"
)

// NewsSource fetches normalized items from one external provider.
type NewsSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.NewsItem, error)
}

// TopicNewsSource fetches items curated for a specific topic (Perplexity).
type TopicNewsSource interface {
	FetchTopic(ctx context.Context, topic string, count int) ([]domain.NewsItem, error)
}

// NewsAggregator fans out to all configured sources. Individual provider
// failures degrade the item count; the aggregate call itself never fails.
type NewsAggregator interface {
	FetchAll(ctx context.Context) domain.NewsBundle
}

// NewsCache stores provider results between requests to cut API spend.
type NewsCache interface {
	Get(ctx context.Context, key string) ([]domain.NewsItem, bool)
	Put(ctx context.Context, key string, items []domain.NewsItem)
}

// TemplateRenderer produces a newsletter offline, without external calls.
type TemplateRenderer interface {
	Render(profile *domain.VoiceProfile, items []domain.NewsItem) string
}

// DraftGenerator produces a newsletter via an external model. Generate and
// GenerateStream fail fast; fallback decisions belong to the caller.
type DraftGenerator interface {
	Configured() bool
	Generate(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (string, error)
	GenerateStream(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (io.ReadCloser, error)
}

// ProfileStore reads the most recent voice profile per user.
type ProfileStore interface {
	LatestProfile(ctx context.Context, userID string) (*domain.VoiceProfile, error)
}

// PreferenceStore lists users scheduled for newsletter delivery at an hour.
type PreferenceStore interface {
	PreferencesForHour(ctx context.Context, hour int) ([]domain.EmailPreference, error)
}

// DeliveryLog persists per-send audit records.
type DeliveryLog interface {
	RecordDelivery(ctx context.Context, rec domain.DeliveryRecord) error
	TouchLastSent(ctx context.Context, userID string) error
}

// Mailer sends one newsletter email and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, rcpt domain.EmailRecipient, email domain.NewsletterEmail) (string, error)
}

// BatchMailer dispatches newsletters to many recipients with rate limiting.
type BatchMailer interface {
	SendBatch(ctx context.Context, recipients []domain.EmailRecipient, jobs map[string]domain.NewsletterEmail) domain.BatchResult
}

// Scheduler controls when the dispatch job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
