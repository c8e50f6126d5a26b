// Package db provides a pgxpool-based connection pool with prepared
// statement registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sjdodge123/Raid-Ledger-sub005/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the scheduler, the
// dispatch layer, and the status API use. Prepared statements eliminate
// parse overhead on every tick.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Scheduler: event snapshot per tick
		"upcoming_events": `
			SELECT id, title, start_time, end_time, game_id,
			       remind_15m, remind_1h, remind_24h
			FROM events
			WHERE cancelled_at IS NULL AND start_time BETWEEN $1 AND $2
			ORDER BY start_time`,

		// Scheduler: batched recipient resolution
		"signups_for_events": "SELECT event_id, user_id FROM signups WHERE event_id = ANY($1)",
		"users_by_ids":       "SELECT id, COALESCE(discord_id, '') FROM users WHERE id = ANY($1)",
		"timezone_prefs":     "SELECT user_id, value FROM user_settings WHERE key = 'timezone' AND user_id = ANY($1)",
		"characters_by_users": `
			SELECT user_id, game_id, name, COALESCE(class, '')
			FROM characters
			WHERE user_id = ANY($1)
			ORDER BY user_id, id`,

		// Scheduler: legacy day-of pass
		"user_timezones": "SELECT user_id, value FROM user_settings WHERE key = 'timezone' AND value NOT IN ('', 'auto')",
		"events_for_user_between": `
			SELECT e.id, e.title, e.start_time, e.end_time, e.game_id,
			       e.remind_15m, e.remind_1h, e.remind_24h
			FROM events e
			JOIN signups s ON s.event_id = e.id
			WHERE s.user_id = $1
			  AND e.cancelled_at IS NULL
			  AND e.start_time BETWEEN $2 AND $3
			ORDER BY e.start_time`,

		// Settings
		"default_timezone": "SELECT COALESCE(value, '') FROM settings WHERE key = 'default_timezone'",

		// Dispatch
		"user_discord_id":   "SELECT COALESCE(discord_id, '') FROM users WHERE id = $1",
		"notification_pref": "SELECT enabled FROM notification_prefs WHERE user_id = $1 AND type = $2",
		"insert_notification": `
			INSERT INTO notifications (id, user_id, type, title, message, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())`,

		// Payload enrichment
		"discord_event_message": "SELECT guild_id, channel_id, message_id FROM discord_event_messages WHERE event_id = $1",
		"game_voice_channel":    "SELECT COALESCE(voice_channel_id, '') FROM game_integrations WHERE game_id = $1",

		// Status API
		"recent_job_runs": `
			SELECT id, name, started_at, finished_at, status, COALESCE(error, ''), COALESCE(duration_ms, 0)
			FROM job_runs
			ORDER BY started_at DESC
			LIMIT $1`,
		"reminder_stats": `
			SELECT reminder_type, COUNT(*)
			FROM reminder_sent
			WHERE sent_at > NOW() - INTERVAL '24 hours'
			GROUP BY reminder_type`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
