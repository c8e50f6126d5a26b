// Package jobs wraps named background jobs with run-overlap protection and
// start/end/failure recording. The scheduler relies on the guarantee that a
// named job never has two invocations executing concurrently in-process; a
// tick that arrives while the previous one is still running is skipped, not
// queued.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tracker implements reminder.Runner. Runs are recorded in job_runs for
// observability; recording failures degrade to log-only, they never block
// the job itself.
type Tracker struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewTracker creates a tracker recording into the given pool. A nil pool
// keeps the overlap guard but skips run recording.
func NewTracker(pool *pgxpool.Pool, logger *slog.Logger) *Tracker {
	return &Tracker{
		pool:    pool,
		logger:  logger,
		running: make(map[string]bool),
	}
}

// Execute runs fn under the overlap guard for name. Failures are logged and
// recorded; they do not propagate — the next scheduled run proceeds
// independently.
func (t *Tracker) Execute(ctx context.Context, name string, fn func(context.Context) error) {
	if !t.begin(name) {
		t.logger.Warn("Job still running, skipping tick", "job", name)
		return
	}
	defer t.end(name)

	start := time.Now()
	runID := t.recordStart(ctx, name, start)

	err := fn(ctx)
	dur := time.Since(start)

	if err != nil {
		t.logger.Error("Job failed", "job", name, "duration", dur.Round(time.Millisecond), "error", err)
		t.recordFinish(ctx, runID, "failed", err.Error(), dur)
		return
	}
	t.logger.Debug("Job complete", "job", name, "duration", dur.Round(time.Millisecond))
	t.recordFinish(ctx, runID, "ok", "", dur)
}

func (t *Tracker) begin(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running[name] {
		return false
	}
	t.running[name] = true
	return true
}

func (t *Tracker) end(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.running, name)
}

func (t *Tracker) recordStart(ctx context.Context, name string, start time.Time) int64 {
	if t.pool == nil {
		return 0
	}
	var id int64
	err := t.pool.QueryRow(ctx, `
		INSERT INTO job_runs (name, started_at, status)
		VALUES ($1, $2, 'running')
		RETURNING id`, name, start,
	).Scan(&id)
	if err != nil {
		t.logger.Warn("Failed to record job start", "job", name, "error", err)
		return 0
	}
	return id
}

func (t *Tracker) recordFinish(ctx context.Context, runID int64, status, errMsg string, dur time.Duration) {
	if runID == 0 {
		return
	}
	var errParam any
	if errMsg != "" {
		errParam = errMsg
	}
	_, err := t.pool.Exec(ctx, `
		UPDATE job_runs
		SET finished_at = NOW(), status = $2, error = $3, duration_ms = $4
		WHERE id = $1`,
		runID, status, errParam, dur.Milliseconds(),
	)
	if err != nil {
		t.logger.Warn("Failed to record job finish", "run_id", runID, "error", err)
	}
}
