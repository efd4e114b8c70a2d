package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// EnhanceKind selects a post-generation rewrite operation.
type EnhanceKind string

const (
	EnhanceSummarize  EnhanceKind = "summarize"
	EnhanceExpand     EnhanceKind = "expand"
	EnhanceToneAdjust EnhanceKind = "tone_adjust"
	EnhanceFactCheck  EnhanceKind = "fact_check"
)

const fallbackSubject = "Weekly Newsletter Update"

// OpenAIClient drives the chat-completions API for newsletter drafting.
// The primary model writes drafts; a cheaper aux model handles subject
// lines and enhancement passes.
type OpenAIClient struct {
	endpoint string
	model    string
	auxModel string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.DraftGenerator = (*OpenAIClient)(nil)

// NewOpenAIClient builds the client from configuration. An empty API key is
// allowed; Configured reports it and callers route around the client.
func NewOpenAIClient(cfg config.OpenAIConfig, client *http.Client, logger *slog.Logger) *OpenAIClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		auxModel: cfg.AuxModel,
		apiKey:   cfg.APIKey,
		client:   client,
		logger:   logger,
	}
}

// Configured reports whether an API key is present.
func (c *OpenAIClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Generate produces a complete newsletter draft in one blocking call.
func (c *OpenAIClient) Generate(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openai api key not configured")
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(profile)},
			{Role: "user", Content: userPrompt(profile, items)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai returned empty draft")
	}
	return content, nil
}

// GenerateStream produces the same draft as Generate but returns a reader
// that yields tokens as they arrive. Transport or status errors surface from
// this call; mid-stream errors surface from the reader.
func (c *OpenAIClient) GenerateStream(ctx context.Context, profile *domain.VoiceProfile, items []domain.NewsItem) (io.ReadCloser, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("openai api key not configured")
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(profile)},
			{Role: "user", Content: userPrompt(profile, items)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
		Stream:      true,
	}

	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			payload := strings.TrimPrefix(line, "data: ")
			if payload == "[DONE]" {
				break
			}

			var chunk chatStreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				c.logger.Warn("stream chunk decode failed", "error", err)
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if token := chunk.Choices[0].Delta.Content; token != "" {
				if _, err := io.WriteString(pw, token); err != nil {
					return
				}
			}
		}
		pw.CloseWithError(scanner.Err())
	}()
	return pr, nil
}

// SubjectLine asks the aux model for a short subject for content. Failures
// return a generic subject rather than an error.
func (c *OpenAIClient) SubjectLine(ctx context.Context, content string) string {
	if !c.Configured() {
		return fallbackSubject
	}

	snippet := content
	if runes := []rune(snippet); len(runes) > 500 {
		snippet = string(runes[:500])
	}

	req := chatRequest{
		Model: c.auxModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You write short, compelling email subject lines. Reply with the subject line only, no quotes, under 60 characters."},
			{Role: "user", Content: "Write a subject line for this newsletter:\n\n" + snippet},
		},
		Temperature: 0.8,
		MaxTokens:   100,
	}

	subject, err := c.complete(ctx, req)
	if err != nil {
		c.logger.Warn("subject line generation failed", "error", err)
		return fallbackSubject
	}
	subject = strings.Trim(strings.TrimSpace(subject), `"`)
	if subject == "" {
		return fallbackSubject
	}
	return subject
}

// Enhance runs a rewrite pass over content. On any failure the original
// content comes back unchanged, so enhancement can never lose a draft.
func (c *OpenAIClient) Enhance(ctx context.Context, content string, kind EnhanceKind, tone string) string {
	if !c.Configured() {
		return content
	}

	instruction := ""
	switch kind {
	case EnhanceSummarize:
		instruction = "Summarize this newsletter to roughly half its length while keeping every story and the overall structure."
	case EnhanceExpand:
		instruction = "Expand this newsletter with more depth and commentary on each story, keeping the existing structure."
	case EnhanceToneAdjust:
		instruction = fmt.Sprintf("Rewrite this newsletter in a %s tone, keeping all facts and structure intact.", tone)
	case EnhanceFactCheck:
		instruction = "Review this newsletter for overstated or unverifiable claims and soften them, keeping the structure intact."
	default:
		return content
	}

	req := chatRequest{
		Model: c.auxModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert newsletter editor. Reply with the edited newsletter in markdown only."},
			{Role: "user", Content: instruction + "\n\n" + content},
		},
		Temperature: 0.5,
		MaxTokens:   1000,
	}

	enhanced, err := c.complete(ctx, req)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		if err != nil {
			c.logger.Warn("content enhancement failed", "kind", string(kind), "error", err)
		}
		return content
	}
	return enhanced
}

func (c *OpenAIClient) complete(ctx context.Context, req chatRequest) (string, error) {
	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) post(ctx context.Context, req chatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call openai: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}
