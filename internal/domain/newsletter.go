package domain

import "time"

// Known tone presets. Tone is an open string; unknown values fall back to
// ToneProfessional throughout the pipeline.
const (
	ToneCasual        = "casual"
	ToneProfessional  = "professional"
	ToneFriendly      = "friendly"
	ToneAuthoritative = "authoritative"
)

// Data source labels carried in the generation envelope.
const (
	DataSourceRealTime = "real-time"
	DataSourceMock     = "mock"
)

// Generation method labels used in delivery accounting.
const (
	MethodTemplate = "template"
	MethodAI       = "ai"
)

// NewsItem is a normalized story from any provider. Title is required for a
// well-formed item; everything else is optional and provider-specific fields
// (Score, Comments, Stars, Language) are only populated by the providers that
// have them. Items are immutable once produced within a generation request.
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
	Score       int       `json:"score,omitempty"`
	Comments    int       `json:"comments,omitempty"`
	Stars       int       `json:"stars,omitempty"`
	Language    string    `json:"language,omitempty"`
}

// NewsBundle groups aggregated items by provider name and keeps the combined
// sequence in fetch-completion order.
type NewsBundle struct {
	BySource map[string][]NewsItem
	All      []NewsItem
}

// VoiceProfile carries the user's style parameters. A nil profile is valid
// everywhere and means "use defaults".
type VoiceProfile struct {
	Topics   string         `json:"topics,omitempty"`
	Tone     string         `json:"tone,omitempty"`
	Feeling  string         `json:"feeling,omitempty"`
	Analysis *VoiceAnalysis `json:"analysis,omitempty"`
}

// VoiceAnalysis holds derived writing metrics from the profile training flow.
type VoiceAnalysis struct {
	AvgSentenceLength float64  `json:"avgSentenceLength"`
	Sentiment         string   `json:"sentiment"`
	Keywords          []string `json:"keywords"`
	WordCount         int      `json:"wordCount"`
	ComplexWords      int      `json:"complexWords"`
}

// GenerationRequest parameterizes one pipeline pass.
type GenerationRequest struct {
	UserID          string
	Topic           string
	UseRealTimeData bool
	UseTemplate     bool
	Stream          bool
}

// GenerationResult is the metadata envelope wrapped around generated content.
// AIGenerated always reflects the generator that actually produced Content,
// never the requested method.
type GenerationResult struct {
	Content           string    `json:"draft"`
	GeneratedAt       time.Time `json:"generatedAt"`
	DataSource        string    `json:"dataSource"`
	Topic             string    `json:"topic"`
	AIGenerated       bool      `json:"aiGenerated"`
	TemplateGenerated bool      `json:"templateGenerated"`
	NewsItemCount     int       `json:"newsItemCount"`
}

// EmailRecipient identifies one delivery target.
type EmailRecipient struct {
	UserID string
	Email  string
	Name   string
}

// NewsletterEmail is a fully generated newsletter ready for delivery.
type NewsletterEmail struct {
	Subject          string
	Content          string
	NewsItemCount    int
	GenerationMethod string
	DataSources      []string
}

// BatchResult accumulates per-recipient delivery outcomes.
// Sent+Failed always equals the number of recipients handed to the batcher.
type BatchResult struct {
	Sent   int
	Failed int
	Errors []string
}

// EmailPreference is one user's scheduled-delivery settings joined with their
// directory record.
type EmailPreference struct {
	UserID           string
	Email            string
	Name             string
	DeliveryHour     int
	Topics           []string
	PreferredSources []string
	UseAI            bool
	MaxItems         int
}

// DeliveryRecord is the audit entry written for every send attempt.
type DeliveryRecord struct {
	ID                string
	UserID            string
	EmailTo           string
	Subject           string
	Status            string
	ProviderMessageID string
	ErrorMessage      string
	NewsItemCount     int
	GenerationMethod  string
	DataSources       []string
	SentAt            time.Time
}
