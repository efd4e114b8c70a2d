// Package storage implements the persistence ports on Postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// Postgres backs the profile, preference, and delivery-log ports. A nil db is
// tolerated: reads return empty results and writes become no-ops, so the rest
// of the pipeline works without a database in development.
type Postgres struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var (
	_ ports.ProfileStore    = (*Postgres)(nil)
	_ ports.PreferenceStore = (*Postgres)(nil)
	_ ports.DeliveryLog     = (*Postgres)(nil)
)

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}
}

// LatestProfile returns the newest voice profile for a user, or nil when the
// user has none.
func (p *Postgres) LatestProfile(ctx context.Context, userID string) (*domain.VoiceProfile, error) {
	if p.db == nil {
		return nil, nil
	}

	query, args, err := p.builder.
		Select("data").
		From("voice_profiles").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}

	var raw []byte
	err = p.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query voice profile: %w", err)
	}

	var profile domain.VoiceProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode voice profile: %w", err)
	}
	return &profile, nil
}

// PreferencesForHour lists users with email delivery enabled for the given
// UTC hour, joined with their directory records.
func (p *Postgres) PreferencesForHour(ctx context.Context, hour int) ([]domain.EmailPreference, error) {
	if p.db == nil {
		return nil, nil
	}

	query, args, err := p.builder.
		Select(
			"ep.user_id",
			"u.email",
			"COALESCE(u.name, '')",
			"ep.delivery_hour",
			"ep.topics",
			"ep.preferred_sources",
			"ep.use_ai",
			"ep.max_items",
		).
		From("email_preferences ep").
		Join("users u ON u.id = ep.user_id").
		Where(sq.Eq{"ep.email_enabled": true, "ep.frequency": "daily", "ep.delivery_hour": hour}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build preferences query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query email preferences: %w", err)
	}
	defer rows.Close()

	var prefs []domain.EmailPreference
	for rows.Next() {
		var (
			pref    domain.EmailPreference
			topics  pq.StringArray
			sources pq.StringArray
		)
		if err := rows.Scan(
			&pref.UserID,
			&pref.Email,
			&pref.Name,
			&pref.DeliveryHour,
			&topics,
			&sources,
			&pref.UseAI,
			&pref.MaxItems,
		); err != nil {
			return nil, fmt.Errorf("scan email preference: %w", err)
		}
		pref.Topics = topics
		pref.PreferredSources = sources
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email preferences: %w", err)
	}
	return prefs, nil
}

// RecordDelivery writes one audit row for a send attempt.
func (p *Postgres) RecordDelivery(ctx context.Context, rec domain.DeliveryRecord) error {
	if p.db == nil {
		return nil
	}

	sentAt := rec.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	query, args, err := p.builder.
		Insert("email_delivery_log").
		Columns(
			"id",
			"user_id",
			"email_to",
			"subject",
			"status",
			"provider_message_id",
			"error_message",
			"news_item_count",
			"generation_method",
			"data_sources",
			"sent_at",
		).
		Values(
			rec.ID,
			rec.UserID,
			rec.EmailTo,
			rec.Subject,
			rec.Status,
			rec.ProviderMessageID,
			rec.ErrorMessage,
			rec.NewsItemCount,
			rec.GenerationMethod,
			pq.StringArray(rec.DataSources),
			sentAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delivery insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert delivery record: %w", err)
	}
	return nil
}

// TouchLastSent bumps the user's last-delivery marker.
func (p *Postgres) TouchLastSent(ctx context.Context, userID string) error {
	if p.db == nil {
		return nil
	}

	query, args, err := p.builder.
		Update("email_preferences").
		Set("last_sent_at", time.Now()).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build last-sent update: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update last-sent marker: %w", err)
	}
	return nil
}

// Open connects to Postgres and verifies the connection. An empty dsn returns
// a nil pool, which NewPostgres treats as storage-disabled.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
