// Package reminder implements event reminder scheduling and idempotent
// dispatch: a periodic scan over upcoming events that decides which reminder
// windows are due, resolves the recipients in batches, and delivers each
// reminder at most once per (event, user, window) triple.
//
// Pipeline: scan events → match windows → resolve recipients → claim ledger
// row → compose message → hand off to the notification dispatcher.
//
// The only mutable state the package owns is the reminder_sent ledger. The
// unique (event_id, user_id, reminder_type) claim is the single
// synchronization point, so overlapping ticks and horizontally scaled
// schedulers are safe: all upstream work is redundant at worst, never
// duplicating a delivery.
package reminder

import (
	"context"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// startedGrace is the jitter buffer: an event stays "due" this long
	// after its exact due instant so a coarse tick interval cannot skip it.
	startedGrace = 90 * time.Second

	defaultTickInterval  = 60 * time.Second
	defaultDayOfInterval = 15 * time.Minute

	// Legacy morning-of path: fire during the first dayOfWindowMinutes of
	// dayOfHour in the user's local time.
	dayOfHour          = 9
	dayOfWindowMinutes = 15

	// NotificationType tags reminder notifications in the inbox.
	NotificationType = "event_reminder"
)

// Window type identifiers. These are the reminder_type values written to the
// ledger, so they must stay stable across releases.
const (
	Window15Min  = "15min"
	Window1Hour  = "1hour"
	Window24Hour = "24hour"
)

// --------------------------------------------------------------------------
// Domain types (read-only to this package)
// --------------------------------------------------------------------------

// Event is an upcoming, non-cancelled event as loaded for a tick.
type Event struct {
	ID        int64
	Title     string
	StartTime time.Time
	EndTime   time.Time
	GameID    *string
	Remind15m bool
	Remind1h  bool
	Remind24h bool
}

// Signup links a user to an event. A nil UserID is an anonymous/guest
// signup and never produces a reminder.
type Signup struct {
	EventID int64
	UserID  *int64
}

// User carries the delivery identity for a recipient.
type User struct {
	ID        int64
	DiscordID string
}

// Character decorates the reminder with "attending as". Class may be empty.
type Character struct {
	UserID int64
	GameID string
	Name   string
	Class  string
}

// UserTimezone pairs a user with their stored timezone preference.
type UserTimezone struct {
	UserID   int64
	Timezone string
}

// Input is one fully resolved (event, user) reminder, ready for the claim
// and delivery steps.
type Input struct {
	EventID          int64
	UserID           int64
	WindowType       string
	WindowLabel      string
	Title            string
	StartTime        time.Time
	MinutesUntil     int
	CharacterDisplay string
	Timezone         string // raw preference; resolved against the system default at delivery
	GameID           *string
}

// Payload is attached to every reminder notification and forwarded to
// downstream channels.
type Payload struct {
	EventID          int64  `json:"eventId"`
	ReminderWindow   string `json:"reminderWindow"`
	CharacterDisplay string `json:"characterDisplay,omitempty"`
	DiscordURL       string `json:"discordUrl,omitempty"`
	VoiceChannelID   string `json:"voiceChannelId,omitempty"`
}

// --------------------------------------------------------------------------
// Collaborator contracts
// --------------------------------------------------------------------------

// Store provides read-only snapshots of event, signup, user, character, and
// timezone data. All multi-entity loads are batched.
type Store interface {
	UpcomingEvents(ctx context.Context, now time.Time) ([]Event, error)
	SignupsForEvents(ctx context.Context, eventIDs []int64) ([]Signup, error)
	UsersByID(ctx context.Context, userIDs []int64) (map[int64]User, error)
	TimezonePrefs(ctx context.Context, userIDs []int64) (map[int64]string, error)
	CharactersByUser(ctx context.Context, userIDs []int64) (map[int64][]Character, error)

	// Legacy day-of path.
	UsersWithTimezone(ctx context.Context) ([]UserTimezone, error)
	EventsForUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]Event, error)
}

// ClaimStore is the idempotency gate. TryClaim atomically records the triple
// and reports whether this caller won; a false return means the reminder was
// already handled and the caller must skip delivery.
type ClaimStore interface {
	TryClaim(ctx context.Context, eventID, userID int64, windowType string) (bool, error)
}

// Notifier is the notification dispatch collaborator. A (false, nil) return
// means the recipient has opted out of this notification type.
type Notifier interface {
	Create(ctx context.Context, userID int64, typ, title, message string, payload Payload) (bool, error)
}

// Settings exposes the system-wide fallback timezone. Empty means unset.
type Settings interface {
	DefaultTimezone(ctx context.Context) (string, error)
}

// Enricher resolves optional payload fields. Empty results and lookup
// failures never block delivery.
type Enricher interface {
	DiscordEmbedURL(ctx context.Context, eventID int64) (string, error)
	VoiceChannelID(ctx context.Context, gameID string) (string, error)
}

// Runner wraps tick execution with run-overlap protection and start/end
// recording. Implemented by internal/jobs.
type Runner interface {
	Execute(ctx context.Context, name string, fn func(context.Context) error)
}
