package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sjdodge123/Raid-Ledger-sub005/internal/api/respond"
)

const maxRecentRuns = 200

// jobRun is one row from job_runs for the status endpoint.
type jobRun struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"durationMs"`
}

// GetRecentJobRuns returns the most recent scheduler job runs.
func (h *Handler) GetRecentJobRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRecentRuns {
			respond.WriteError(w, http.StatusBadRequest, "BAD_LIMIT", "limit must be 1-200")
			return
		}
		limit = n
	}

	rows, err := h.pool.Query(r.Context(), "recent_job_runs", limit)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load job runs")
		return
	}
	defer rows.Close()

	runs := make([]jobRun, 0, limit)
	for rows.Next() {
		var jr jobRun
		if err := rows.Scan(&jr.ID, &jr.Name, &jr.StartedAt, &jr.FinishedAt, &jr.Status, &jr.Error, &jr.DurationMs); err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "SCAN_FAILED", "Failed to read job runs")
			return
		}
		runs = append(runs, jr)
	}
	if rows.Err() != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load job runs")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// GetReminderStats returns reminder delivery counts by window over the last
// 24 hours, straight from the ledger.
func (h *Handler) GetReminderStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.pool.Query(r.Context(), "reminder_stats")
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load reminder stats")
		return
	}
	defer rows.Close()

	counts := make(map[string]int64)
	var total int64
	for rows.Next() {
		var window string
		var n int64
		if err := rows.Scan(&window, &n); err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "SCAN_FAILED", "Failed to read reminder stats")
			return
		}
		counts[window] = n
		total += n
	}
	if rows.Err() != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load reminder stats")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"window":    "24h",
		"total":     total,
		"byWindow":  counts,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
