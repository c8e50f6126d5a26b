// Command remindctl is the reminder service operations CLI.
//
// Usage:
//
//	remindctl tick
//	remindctl dayof
//	remindctl status --limit 20
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sjdodge123/Raid-Ledger-sub005/internal/config"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/db"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/notify"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/reminder"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "remindctl",
		Short: "Raid Ledger reminder service CLI",
	}

	root.AddCommand(tickCmd())
	root.AddCommand(dayOfCmd())
	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// tick / dayof commands
// --------------------------------------------------------------------------

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one primary reminder scan now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				sched, err := buildScheduler(cfg, pool)
				if err != nil {
					return err
				}
				start := time.Now()
				if err := sched.RunReminderTick(ctx); err != nil {
					return err
				}
				logger.Info("Reminder tick finished", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

func dayOfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dayof",
		Short: "Run one legacy day-of scan now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				sched, err := buildScheduler(cfg, pool)
				if err != nil {
					return err
				}
				start := time.Now()
				if err := sched.RunDayOfTick(ctx); err != nil {
					return err
				}
				logger.Info("Day-of tick finished", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

// buildScheduler wires scheduler dependencies for a one-shot run. No runner:
// the CLI invokes tick methods directly, so overlap tracking never applies.
func buildScheduler(cfg *config.Config, pool *db.Pool) (*reminder.Scheduler, error) {
	discord, err := notify.NewDiscordSender(cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord sender: %w", err)
	}
	store := reminder.NewPGStore(pool.Pool)
	claims := reminder.NewPGClaimStore(pool.Pool)
	notifier := notify.New(pool.Pool, discord, logger)
	return reminder.NewScheduler(store, claims, notifier, store, store, nil, logger), nil
}

// --------------------------------------------------------------------------
// status command
// --------------------------------------------------------------------------

func statusCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent job runs and 24h delivery counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				rows, err := pool.Query(ctx, "recent_job_runs", limit)
				if err != nil {
					return fmt.Errorf("query job runs: %w", err)
				}
				defer rows.Close()

				fmt.Println("Recent job runs:")
				for rows.Next() {
					var (
						id         int64
						name       string
						startedAt  time.Time
						finishedAt *time.Time
						status     string
						errMsg     string
						durationMs int64
					)
					if err := rows.Scan(&id, &name, &startedAt, &finishedAt, &status, &errMsg, &durationMs); err != nil {
						return fmt.Errorf("scan job run: %w", err)
					}
					line := fmt.Sprintf("  %s  %-18s %-7s %dms", startedAt.Format(time.RFC3339), name, status, durationMs)
					if errMsg != "" {
						line += "  " + errMsg
					}
					fmt.Println(line)
				}
				if err := rows.Err(); err != nil {
					return err
				}

				stats, err := pool.Query(ctx, "reminder_stats")
				if err != nil {
					return fmt.Errorf("query reminder stats: %w", err)
				}
				defer stats.Close()

				fmt.Println("Reminders sent (last 24h):")
				for stats.Next() {
					var window string
					var n int64
					if err := stats.Scan(&window, &n); err != nil {
						return fmt.Errorf("scan reminder stats: %w", err)
					}
					fmt.Printf("  %-8s %d\n", window, n)
				}
				return stats.Err()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of job runs to show")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWith handles config loading, DB connection, and context cancellation.
func runWith(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
