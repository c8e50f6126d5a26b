// Command reminderd is the Raid Ledger reminder service: the periodic event
// reminder scheduler plus a small HTTP status surface.
//
// Usage:
//
//	reminderd
//	API_PORT=8080 REMINDER_TICK_SECONDS=60 reminderd
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/sjdodge123/Raid-Ledger-sub005/internal/api"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/config"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/db"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/jobs"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/maintenance"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/notify"
	"github.com/sjdodge123/Raid-Ledger-sub005/internal/reminder"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Discord fan-out is optional; without a token reminders land in the
	// inbox only.
	discord, err := notify.NewDiscordSender(cfg.DiscordBotToken)
	if err != nil {
		logger.Error("Failed to create Discord sender", "error", err)
		os.Exit(1)
	}
	if discord == nil {
		logger.Info("Discord fan-out disabled (no DISCORD_BOT_TOKEN)")
	}

	// Wire the scheduler
	store := reminder.NewPGStore(pool.Pool)
	claims := reminder.NewPGClaimStore(pool.Pool)
	notifier := notify.New(pool.Pool, discord, logger)
	tracker := jobs.NewTracker(pool.Pool, logger)

	sched := reminder.NewScheduler(store, claims, notifier, store, store, tracker, logger)
	sched.SetIntervals(cfg.ReminderTick, cfg.DayOfTick)
	go sched.Start(ctx)

	// Start maintenance tickers
	go maintenance.Start(ctx, pool.Pool, maintenance.DefaultConfig(), logger)

	// Create router
	router := api.NewRouter(pool.Pool, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting status server",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
