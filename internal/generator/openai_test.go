package generator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"soulthread/internal/config"
	"soulthread/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewOpenAIClient(config.OpenAIConfig{
		Endpoint: server.URL,
		Model:    "gpt-4o-mini",
		AuxModel: "gpt-3.5-turbo",
		APIKey:   "sk-test",
	}, server.Client(), nil)
	return client, server
}

func TestGenerateReturnsDraft(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"# Draft\n\nHello readers."}}]}`)
	})

	draft, err := client.Generate(context.Background(), nil, []domain.NewsItem{{Title: "A"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(draft, "Hello readers.") {
		t.Fatalf("unexpected draft: %q", draft)
	}
}

func TestGenerateFailsOnErrorStatus(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	})

	if _, err := client.Generate(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestGenerateFailsOnEmptyDraft(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"   "}}]}`)
	})

	if _, err := client.Generate(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error on blank content")
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	t.Parallel()

	client := NewOpenAIClient(config.OpenAIConfig{Endpoint: "http://unused"}, nil, nil)
	if client.Configured() {
		t.Fatal("client without key should report unconfigured")
	}
	if _, err := client.Generate(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestGenerateStreamAssemblesTokens(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"Hello", " ", "world", "!"}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	stream, err := client.GenerateStream(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	out, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(out) != "Hello world!" {
		t.Fatalf("unexpected streamed content: %q", out)
	}
}

func TestGenerateStreamFailsFastOnStatus(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	if _, err := client.GenerateStream(context.Background(), nil, nil); err == nil {
		t.Fatal("expected setup error on 401")
	}
}

func TestSubjectLine(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"\"Fresh Takes on DevTools\""}}]}`)
	})

	subject := client.SubjectLine(context.Background(), "newsletter body")
	if subject != "Fresh Takes on DevTools" {
		t.Fatalf("expected unquoted subject, got %q", subject)
	}
}

func TestSubjectLineFallsBack(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	if got := client.SubjectLine(context.Background(), "body"); got != fallbackSubject {
		t.Fatalf("expected fallback subject, got %q", got)
	}

	unconfigured := NewOpenAIClient(config.OpenAIConfig{}, nil, nil)
	if got := unconfigured.SubjectLine(context.Background(), "body"); got != fallbackSubject {
		t.Fatalf("unconfigured client should fall back, got %q", got)
	}
}

func TestEnhanceReturnsOriginalOnFailure(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	original := "# Original\n\nBody."
	if got := client.Enhance(context.Background(), original, EnhanceSummarize, ""); got != original {
		t.Fatalf("failed enhancement should return original, got %q", got)
	}
}

func TestEnhanceAppliesRewrite(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"# Shorter\n\nTight body."}}]}`)
	})

	got := client.Enhance(context.Background(), "# Original", EnhanceSummarize, "")
	if !strings.Contains(got, "Tight body.") {
		t.Fatalf("expected rewritten content, got %q", got)
	}
}

func TestEnhanceUnknownKindIsNoOp(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown kind should not call the api")
	})

	original := "keep me"
	if got := client.Enhance(context.Background(), original, EnhanceKind("mystery"), ""); got != original {
		t.Fatalf("unknown kind should return original, got %q", got)
	}
}

func TestPromptsCarryProfileAndItems(t *testing.T) {
	t.Parallel()

	profile := &domain.VoiceProfile{Tone: domain.ToneCasual, Topics: "robotics", Feeling: "curious"}
	items := []domain.NewsItem{{Title: "Arm Update", Summary: "New gripper", Source: "Robo Mag", URL: "https://ex.com"}}

	sys := systemPrompt(profile)
	if !strings.Contains(sys, "casual") || !strings.Contains(sys, "curious") {
		t.Fatalf("system prompt missing profile fields:\n%s", sys)
	}

	user := userPrompt(profile, items)
	for _, want := range []string{"robotics", "Arm Update", "New gripper", "Robo Mag", "https://ex.com"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}
