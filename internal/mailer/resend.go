// Package mailer delivers finished newsletters through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"soulthread/internal/config"
	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// ResendClient sends transactional email via Resend.
type ResendClient struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

var _ ports.Mailer = (*ResendClient)(nil)

// NewResendClient builds the client from configuration.
func NewResendClient(cfg config.EmailConfig, client *http.Client) *ResendClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ResendClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		client:   client,
	}
}

// Configured reports whether an API key is present.
func (c *ResendClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type resendRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text"`
	Headers map[string]string `json:"headers,omitempty"`
	Tags    []resendTag       `json:"tags,omitempty"`
}

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send delivers one newsletter and returns the provider message id.
func (c *ResendClient) Send(ctx context.Context, rcpt domain.EmailRecipient, email domain.NewsletterEmail) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("resend api key not configured")
	}
	if rcpt.Email == "" {
		return "", fmt.Errorf("recipient email is empty")
	}

	req := resendRequest{
		From:    c.from,
		To:      []string{rcpt.Email},
		Subject: email.Subject,
		HTML:    renderHTML(email.Subject, email.Content),
		Text:    email.Content,
		Headers: map[string]string{"X-Entity-Ref-ID": rcpt.UserID},
		Tags: []resendTag{
			{Name: "category", Value: "newsletter"},
			{Name: "generation", Value: email.GenerationMethod},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode resend request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create resend request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("resend status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode resend response: %w", err)
	}
	return parsed.ID, nil
}

// SendTest sends a short fixed-content email, used by the email test endpoint
// to verify delivery configuration.
func (c *ResendClient) SendTest(ctx context.Context, to string) (string, error) {
	return c.Send(ctx, domain.EmailRecipient{UserID: "test", Email: to}, domain.NewsletterEmail{
		Subject:          "SoulThread delivery test 🧵",
		Content:          "# Delivery test\n\nIf you can read this, newsletter delivery is configured correctly.",
		GenerationMethod: domain.MethodTemplate,
	})
}
