package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"soulthread/internal/domain"
)

type fakeProfiles struct {
	profile *domain.VoiceProfile
	err     error
}

func (f *fakeProfiles) LatestProfile(ctx context.Context, userID string) (*domain.VoiceProfile, error) {
	return f.profile, f.err
}

type fakeAggregator struct {
	items []domain.NewsItem
}

func (f *fakeAggregator) FetchAll(ctx context.Context) domain.NewsBundle {
	return domain.NewsBundle{All: f.items, BySource: map[string][]domain.NewsItem{"fake": f.items}}
}

type fakeTemplate struct{}

func (fakeTemplate) Render(profile *domain.VoiceProfile, items []domain.NewsItem) string {
	return "template draft"
}

type fakeAI struct {
	configured bool
	draft      string
	err        error
	stream     io.ReadCloser
	streamErr  error
	calls      int
}

func (f *fakeAI) Configured() bool { return f.configured }

func (f *fakeAI) Generate(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (string, error) {
	f.calls++
	return f.draft, f.err
}

func (f *fakeAI) GenerateStream(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (io.ReadCloser, error) {
	f.calls++
	return f.stream, f.streamErr
}

func newTestNewsletter(profiles *fakeProfiles, agg *fakeAggregator, ai *fakeAI) *Newsletter {
	deps := NewsletterDeps{Template: fakeTemplate{}}
	if profiles != nil {
		deps.Profiles = profiles
	}
	if agg != nil {
		deps.Aggregator = agg
	}
	if ai != nil {
		deps.AI = ai
	}
	return NewNewsletter(deps)
}

func TestGenerateRequiresUserID(t *testing.T) {
	t.Parallel()

	n := newTestNewsletter(nil, nil, nil)
	if _, _, err := n.Generate(context.Background(), domain.GenerationRequest{}); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
}

func TestGenerateAIPathRealTimeData(t *testing.T) {
	t.Parallel()

	agg := &fakeAggregator{items: []domain.NewsItem{{Title: "ai story", Summary: "about ai"}}}
	ai := &fakeAI{configured: true, draft: "model draft"}
	n := newTestNewsletter(&fakeProfiles{}, agg, ai)

	result, stream, err := n.Generate(context.Background(), domain.GenerationRequest{
		UserID:          "u1",
		UseRealTimeData: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stream != nil {
		t.Fatal("non-streaming request returned a stream")
	}
	if result.Content != "model draft" {
		t.Fatalf("expected model draft, got %q", result.Content)
	}
	if !result.AIGenerated || result.TemplateGenerated {
		t.Fatalf("flags wrong: %+v", result)
	}
	if result.DataSource != domain.DataSourceRealTime {
		t.Fatalf("expected real-time data source, got %q", result.DataSource)
	}
	if result.NewsItemCount != 1 {
		t.Fatalf("expected 1 item, got %d", result.NewsItemCount)
	}
}

func TestGenerateMockDataRequest(t *testing.T) {
	t.Parallel()

	n := newTestNewsletter(&fakeProfiles{}, &fakeAggregator{}, nil)

	result, _, err := n.Generate(context.Background(), domain.GenerationRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.DataSource != domain.DataSourceMock {
		t.Fatalf("expected mock data source, got %q", result.DataSource)
	}
	if result.NewsItemCount != 8 {
		t.Fatalf("mock request should use 8 curated items, got %d", result.NewsItemCount)
	}
	if !result.TemplateGenerated {
		t.Fatal("without AI the template must produce the draft")
	}
}

func TestGenerateEmptyRealTimeFallsBackToCurated(t *testing.T) {
	t.Parallel()

	n := newTestNewsletter(&fakeProfiles{}, &fakeAggregator{}, nil)

	result, _, err := n.Generate(context.Background(), domain.GenerationRequest{
		UserID:          "u1",
		UseRealTimeData: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.DataSource != domain.DataSourceMock {
		t.Fatalf("curated fallback should report mock, got %q", result.DataSource)
	}
	if result.NewsItemCount != 5 {
		t.Fatalf("real-time fallback should use 5 curated items, got %d", result.NewsItemCount)
	}
}

func TestGenerateAIFailureFallsBackToTemplate(t *testing.T) {
	t.Parallel()

	agg := &fakeAggregator{items: []domain.NewsItem{{Title: "story"}}}
	ai := &fakeAI{configured: true, err: errors.New("model down")}
	n := newTestNewsletter(&fakeProfiles{}, agg, ai)

	result, _, err := n.Generate(context.Background(), domain.GenerationRequest{
		UserID:          "u1",
		UseRealTimeData: true,
	})
	if err != nil {
		t.Fatalf("fallback path must not error: %v", err)
	}
	if result.Content != "template draft" {
		t.Fatalf("expected template draft, got %q", result.Content)
	}
	if result.AIGenerated {
		t.Fatal("AIGenerated must reflect the generator that produced the content")
	}
	if !result.TemplateGenerated {
		t.Fatal("TemplateGenerated flag missing")
	}
}

func TestGenerateTemplateRequestSkipsAI(t *testing.T) {
	t.Parallel()

	ai := &fakeAI{configured: true, draft: "model draft"}
	n := newTestNewsletter(&fakeProfiles{}, &fakeAggregator{}, ai)

	result, _, err := n.Generate(context.Background(), domain.GenerationRequest{
		UserID:      "u1",
		UseTemplate: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ai.calls != 0 {
		t.Fatalf("template request must not call the model, got %d calls", ai.calls)
	}
	if result.Content != "template draft" {
		t.Fatalf("expected template draft, got %q", result.Content)
	}
}

func TestGenerateStreamSuccess(t *testing.T) {
	t.Parallel()

	ai := &fakeAI{
		configured: true,
		stream:     io.NopCloser(strings.NewReader("streamed tokens")),
	}
	n := newTestNewsletter(&fakeProfiles{}, &fakeAggregator{items: []domain.NewsItem{{Title: "s"}}}, ai)

	result, stream, err := n.Generate(context.Background(), domain.GenerationRequest{
		UserID:          "u1",
		UseRealTimeData: true,
		Stream:          true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stream == nil {
		t.Fatal("expected a stream")
	}
	defer stream.Close()

	out, _ := io.ReadAll(stream)
	if string(out) != "streamed tokens" {
		t.Fatalf("unexpected stream content: %q", out)
	}
	if result.Content != "" {
		t.Fatal("streaming envelope should not carry content")
	}
	if !result.AIGenerated {
		t.Fatal("streaming draft is AI generated")
	}
}

func TestGenerateStreamSetupFailureFallsBack(t *testing.T) {
	t.Parallel()

	ai := &fakeAI{configured: true, streamErr: errors.New("connect refused")}
	n := newTestNewsletter(&fakeProfiles{}, &fakeAggregator{items: []domain.NewsItem{{Title: "s"}}}, ai)

	result, stream, err := n.Generate(context.Background(), domain.GenerationRequest{
		UserID:          "u1",
		UseRealTimeData: true,
		Stream:          true,
	})
	if err != nil {
		t.Fatalf("fallback path must not error: %v", err)
	}
	if stream != nil {
		t.Fatal("failed stream setup should degrade to non-streaming")
	}
	if result.Content != "template draft" || !result.TemplateGenerated {
		t.Fatalf("expected template fallback, got %+v", result)
	}
}

func TestGenerateProfileLookupFailureDegrades(t *testing.T) {
	t.Parallel()

	n := newTestNewsletter(&fakeProfiles{err: errors.New("db down")}, &fakeAggregator{}, nil)

	result, _, err := n.Generate(context.Background(), domain.GenerationRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("profile failure must not abort generation: %v", err)
	}
	if result.Content == "" {
		t.Fatal("expected a rendered draft despite profile failure")
	}
}

func TestGenerateTopicResolution(t *testing.T) {
	t.Parallel()

	n := newTestNewsletter(&fakeProfiles{profile: &domain.VoiceProfile{Topics: "fintech"}}, &fakeAggregator{}, nil)

	result, _, err := n.Generate(context.Background(), domain.GenerationRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Topic != "fintech" {
		t.Fatalf("profile topic should win when request has none, got %q", result.Topic)
	}

	result, _, err = n.Generate(context.Background(), domain.GenerationRequest{UserID: "u1", Topic: "crypto"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Topic != "crypto" {
		t.Fatalf("request topic should win, got %q", result.Topic)
	}

	bare := newTestNewsletter(&fakeProfiles{}, &fakeAggregator{}, nil)
	result, _, err = bare.Generate(context.Background(), domain.GenerationRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Topic != "general" {
		t.Fatalf("topic-less request without a profile should default to general, got %q", result.Topic)
	}
}
