// Package notify is the notification dispatch collaborator: it writes each
// notification to the user's inbox and best-effort fans it out to the user's
// linked Discord account. Opt-outs are honored per notification type.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sjdodge123/Raid-Ledger-sub005/internal/reminder"
)

// Notification is one inbox row.
type Notification struct {
	ID        uuid.UUID
	UserID    int64
	Type      string
	Title     string
	Message   string
	CreatedAt time.Time
}

// Service persists notifications and fans out to Discord. Implements
// reminder.Notifier.
type Service struct {
	pool    *pgxpool.Pool
	discord *DiscordSender // nil = inbox only
	logger  *slog.Logger
}

// New creates a dispatch service. discord may be nil when no bot token is
// configured.
func New(pool *pgxpool.Pool, discord *DiscordSender, logger *slog.Logger) *Service {
	return &Service{pool: pool, discord: discord, logger: logger}
}

// Create delivers one notification. Returns (false, nil) when the user has
// opted out of typ — an expected outcome, not a failure. The inbox insert is
// the delivery of record; the Discord DM is best effort on top and its
// failure is logged, never propagated.
func (s *Service) Create(ctx context.Context, userID int64, typ, title, message string, payload reminder.Payload) (bool, error) {
	enabled, err := s.prefEnabled(ctx, userID, typ)
	if err != nil {
		return false, fmt.Errorf("check notification preference: %w", err)
	}
	if !enabled {
		return false, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode payload: %w", err)
	}

	n := Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if _, err := s.pool.Exec(ctx, "insert_notification",
		n.ID, n.UserID, n.Type, n.Title, n.Message, raw,
	); err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}

	if s.discord != nil {
		discordID, err := s.userDiscordID(ctx, userID)
		if err != nil {
			s.logger.Warn("Discord identity lookup failed", "user_id", userID, "error", err)
		} else if discordID != "" {
			if err := s.discord.SendDM(discordID, title, message, payload); err != nil {
				s.logger.Warn("Discord DM failed",
					"user_id", userID, "notification_id", n.ID, "error", err)
			}
		}
	}
	return true, nil
}

// prefEnabled reads the per-type opt-out. No stored preference means enabled.
func (s *Service) prefEnabled(ctx context.Context, userID int64, typ string) (bool, error) {
	var enabled bool
	err := s.pool.QueryRow(ctx, "notification_pref", userID, typ).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return enabled, nil
}

func (s *Service) userDiscordID(ctx context.Context, userID int64) (string, error) {
	var discordID string
	err := s.pool.QueryRow(ctx, "user_discord_id", userID).Scan(&discordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return discordID, err
}
