package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"soulthread/internal/domain"
	"soulthread/internal/usecase"
)

type stubTemplate struct{}

func (stubTemplate) Render(profile *domain.VoiceProfile, items []domain.NewsItem) string {
	return "rendered draft"
}

type stubAggregator struct {
	items []domain.NewsItem
}

func (s *stubAggregator) FetchAll(ctx context.Context) domain.NewsBundle {
	return domain.NewsBundle{All: s.items}
}

type stubPrefs struct {
	prefs []domain.EmailPreference
}

func (s *stubPrefs) PreferencesForHour(ctx context.Context, hour int) ([]domain.EmailPreference, error) {
	return s.prefs, nil
}

type stubBatcher struct{}

func (stubBatcher) SendBatch(ctx context.Context, recipients []domain.EmailRecipient, jobs map[string]domain.NewsletterEmail) domain.BatchResult {
	return domain.BatchResult{Sent: len(recipients)}
}

func testServer(t *testing.T) *Server {
	t.Helper()

	newsletter := usecase.NewNewsletter(usecase.NewsletterDeps{
		Aggregator: &stubAggregator{items: []domain.NewsItem{{Title: "story", Summary: "body"}}},
		Template:   stubTemplate{},
	})
	dispatcher := usecase.NewDispatcher(usecase.DispatcherDeps{
		Prefs:    &stubPrefs{},
		Template: stubTemplate{},
		Batcher:  stubBatcher{},
	})

	return NewServer(ServerDeps{
		Newsletter: newsletter,
		Dispatcher: dispatcher,
		CronSecret: "topsecret",
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodPost, "/api/generate", `{"userId":"u1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.GenerationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Content != "rendered draft" {
		t.Fatalf("unexpected draft: %q", result.Content)
	}
	if !result.TemplateGenerated {
		t.Fatal("without AI the draft must be template generated")
	}
	if result.DataSource != domain.DataSourceRealTime {
		t.Fatalf("real-time should be the default, got %q", result.DataSource)
	}
}

func TestGenerateEndpointMockOptOut(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodPost, "/api/generate", `{"userId":"u1","useRealTimeData":false}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result domain.GenerationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.DataSource != domain.DataSourceMock {
		t.Fatalf("expected mock data source, got %q", result.DataSource)
	}
}

func TestGenerateEndpointRequiresUserID(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodPost, "/api/generate", `{"topic":"ai"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateEndpointRejectsBadJSON(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodPost, "/api/generate", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCronEndpointAuth(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/cron/send-newsletters", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token should 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/cron/send-newsletters", "",
		map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token should 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/cron/send-newsletters", "",
		map[string]string{"Authorization": "Bearer topsecret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token should 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary usecase.DispatchSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.Success {
		t.Fatalf("expected successful run: %+v", summary)
	}
}

func TestCronInfoEndpoint(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodGet, "/api/cron/send-newsletters", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEnhanceEndpointUnconfigured(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodPost, "/api/enhance", `{"content":"# Draft"}`, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without enhancer, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/enhance", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing content should 400, got %d", rec.Code)
	}
}

func TestEmailTestEndpoint(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/email/test", `{"to":"not-an-email"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid address should 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/email/test", `{"to":"a@ex.com"}`, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without mailer, got %d", rec.Code)
	}
}

// brokenStream yields one chunk of tokens, then fails like a dropped
// upstream connection.
type brokenStream struct {
	sent bool
}

func (b *brokenStream) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "partial tokens "), nil
	}
	return 0, errors.New("upstream connection reset")
}

func (b *brokenStream) Close() error { return nil }

type streamingAI struct{}

func (streamingAI) Configured() bool { return true }

func (streamingAI) Generate(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (string, error) {
	return "", errors.New("not used")
}

func (streamingAI) GenerateStream(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (io.ReadCloser, error) {
	return &brokenStream{}, nil
}

func TestGenerateStreamMidStreamFailureAbortsResponse(t *testing.T) {
	t.Parallel()

	newsletter := usecase.NewNewsletter(usecase.NewsletterDeps{
		Aggregator: &stubAggregator{items: []domain.NewsItem{{Title: "story"}}},
		Template:   stubTemplate{},
		AI:         streamingAI{},
	})
	srv := NewServer(ServerDeps{Newsletter: newsletter})

	server := httptest.NewServer(srv.Router())
	defer server.Close()

	resp, err := server.Client().Post(server.URL+"/api/generate", "application/json",
		strings.NewReader(`{"userId":"u1","stream":true}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 before the failure, got %d", resp.StatusCode)
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr == nil {
		t.Fatalf("mid-stream failure must not end in a clean EOF, got body %q", body)
	}
	if !strings.Contains(string(body), "partial tokens") {
		t.Fatalf("tokens written before the failure should reach the client, got %q", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	router := testServer(t).Router()
	rec := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/health", "", map[string]string{"X-Request-ID": "abc"})
	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("caller request id should be echoed, got %q", got)
	}
}
