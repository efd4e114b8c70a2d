package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// Batcher sends newsletters in fixed-size batches with a pause between
// batches to stay under provider rate limits. Sends within a batch run
// concurrently; batches run strictly in sequence.
type Batcher struct {
	mailer    ports.Mailer
	log       ports.DeliveryLog
	batchSize int
	delay     time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.BatchMailer = (*Batcher)(nil)

// NewBatcher wires the batch sender. The delivery log may be nil.
func NewBatcher(mailer ports.Mailer, log ports.DeliveryLog, batchSize int, delay time.Duration, logger *slog.Logger) *Batcher {
	if batchSize <= 0 {
		batchSize = 10
	}
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batcher{
		mailer:    mailer,
		log:       log,
		batchSize: batchSize,
		delay:     delay,
		logger:    logger,
		now:       time.Now,
	}
}

// SendBatch delivers to every recipient. A recipient without a matching job
// counts as failed. The returned counts always sum to len(recipients).
func (b *Batcher) SendBatch(ctx context.Context, recipients []domain.EmailRecipient, jobs map[string]domain.NewsletterEmail) domain.BatchResult {
	var (
		mu     sync.Mutex
		result domain.BatchResult
	)

	for start := 0; start < len(recipients); start += b.batchSize {
		end := start + b.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[start:end]

		var wg sync.WaitGroup
		for _, rcpt := range batch {
			wg.Add(1)
			go func(rcpt domain.EmailRecipient) {
				defer wg.Done()

				sendErr := b.sendOne(ctx, rcpt, jobs)
				mu.Lock()
				if sendErr != nil {
					result.Failed++
					result.Errors = append(result.Errors, sendErr.Error())
				} else {
					result.Sent++
				}
				mu.Unlock()
			}(rcpt)
		}
		wg.Wait()

		if end < len(recipients) && b.delay > 0 {
			select {
			case <-ctx.Done():
				b.logger.Warn("batch send interrupted", "remaining", len(recipients)-end)
				mu.Lock()
				for _, rcpt := range recipients[end:] {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", rcpt.UserID, ctx.Err()))
				}
				mu.Unlock()
				return result
			case <-time.After(b.delay):
			}
		}
	}

	b.logger.Info("batch send complete",
		"recipients", len(recipients), "sent", result.Sent, "failed", result.Failed)
	return result
}

func (b *Batcher) sendOne(ctx context.Context, rcpt domain.EmailRecipient, jobs map[string]domain.NewsletterEmail) error {
	email, ok := jobs[rcpt.UserID]
	if !ok {
		err := fmt.Errorf("no newsletter data for user %s", rcpt.UserID)
		b.record(ctx, rcpt, domain.NewsletterEmail{}, "", err)
		return err
	}

	messageID, err := b.mailer.Send(ctx, rcpt, email)
	b.record(ctx, rcpt, email, messageID, err)
	if err != nil {
		return fmt.Errorf("user %s: %w", rcpt.UserID, err)
	}
	return nil
}

// record writes the audit entry and bumps the last-sent marker on success.
// Logging failures never fail the send.
func (b *Batcher) record(ctx context.Context, rcpt domain.EmailRecipient, email domain.NewsletterEmail, messageID string, sendErr error) {
	if b.log == nil {
		return
	}

	rec := domain.DeliveryRecord{
		ID:                uuid.NewString(),
		UserID:            rcpt.UserID,
		EmailTo:           rcpt.Email,
		Subject:           email.Subject,
		Status:            "sent",
		ProviderMessageID: messageID,
		NewsItemCount:     email.NewsItemCount,
		GenerationMethod:  email.GenerationMethod,
		DataSources:       email.DataSources,
		SentAt:            b.now(),
	}
	if sendErr != nil {
		rec.Status = "failed"
		rec.ErrorMessage = sendErr.Error()
	}

	if err := b.log.RecordDelivery(ctx, rec); err != nil {
		b.logger.Warn("delivery record write failed", "userId", rcpt.UserID, "error", err)
	}
	if sendErr == nil {
		if err := b.log.TouchLastSent(ctx, rcpt.UserID); err != nil {
			b.logger.Warn("last-sent update failed", "userId", rcpt.UserID, "error", err)
		}
	}
}
