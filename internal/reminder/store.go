package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// upcomingSlack widens the tick's event load on both sides: the jitter
// buffer behind now, and a couple of minutes past the widest lead ahead.
const upcomingSlack = 2 * time.Minute

// PGStore implements Store, Settings, and Enricher on a pgxpool with the
// prepared statements registered in internal/db.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store on the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// UpcomingEvents loads every non-cancelled event whose start falls inside
// the widest window, once per tick. The snapshot stays consistent for the
// whole tick; nothing re-reads mid-tick.
func (s *PGStore) UpcomingEvents(ctx context.Context, now time.Time) ([]Event, error) {
	from := now.Add(-upcomingSlack)
	to := now.Add(24*time.Hour + upcomingSlack)

	rows, err := s.pool.Query(ctx, "upcoming_events", from, to)
	if err != nil {
		return nil, fmt.Errorf("query upcoming events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// SignupsForEvents loads all signups for the event set, anonymous included;
// the resolver drops nil user references.
func (s *PGStore) SignupsForEvents(ctx context.Context, eventIDs []int64) ([]Signup, error) {
	rows, err := s.pool.Query(ctx, "signups_for_events", eventIDs)
	if err != nil {
		return nil, fmt.Errorf("query signups: %w", err)
	}
	defer rows.Close()

	var signups []Signup
	for rows.Next() {
		var sg Signup
		if err := rows.Scan(&sg.EventID, &sg.UserID); err != nil {
			return nil, fmt.Errorf("scan signup: %w", err)
		}
		signups = append(signups, sg)
	}
	return signups, rows.Err()
}

// UsersByID batch-loads user records for the distinct recipient set.
func (s *PGStore) UsersByID(ctx context.Context, userIDs []int64) (map[int64]User, error) {
	rows, err := s.pool.Query(ctx, "users_by_ids", userIDs)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]User, len(userIDs))
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.DiscordID); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// TimezonePrefs batch-loads stored timezone preferences. Users without a
// stored value are simply absent from the map.
func (s *PGStore) TimezonePrefs(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	rows, err := s.pool.Query(ctx, "timezone_prefs", userIDs)
	if err != nil {
		return nil, fmt.Errorf("query timezone preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[int64]string)
	for rows.Next() {
		var uid int64
		var tz string
		if err := rows.Scan(&uid, &tz); err != nil {
			return nil, fmt.Errorf("scan timezone preference: %w", err)
		}
		prefs[uid] = tz
	}
	return prefs, rows.Err()
}

// CharactersByUser batch-loads characters grouped per user, in a fixed
// order so the no-game-match fallback is deterministic.
func (s *PGStore) CharactersByUser(ctx context.Context, userIDs []int64) (map[int64][]Character, error) {
	rows, err := s.pool.Query(ctx, "characters_by_users", userIDs)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer rows.Close()

	chars := make(map[int64][]Character)
	for rows.Next() {
		var c Character
		if err := rows.Scan(&c.UserID, &c.GameID, &c.Name, &c.Class); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		chars[c.UserID] = append(chars[c.UserID], c)
	}
	return chars, rows.Err()
}

// UsersWithTimezone returns every user with an explicit timezone preference
// ("auto" excluded) for the legacy day-of pass.
func (s *PGStore) UsersWithTimezone(ctx context.Context) ([]UserTimezone, error) {
	rows, err := s.pool.Query(ctx, "user_timezones")
	if err != nil {
		return nil, fmt.Errorf("query user timezones: %w", err)
	}
	defer rows.Close()

	var prefs []UserTimezone
	for rows.Next() {
		var p UserTimezone
		if err := rows.Scan(&p.UserID, &p.Timezone); err != nil {
			return nil, fmt.Errorf("scan user timezone: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// EventsForUserBetween returns the user's signed-up, non-cancelled events
// starting inside [from, to].
func (s *PGStore) EventsForUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]Event, error) {
	rows, err := s.pool.Query(ctx, "events_for_user_between", userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query events for user %d: %w", userID, err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// DefaultTimezone returns the system-wide fallback zone, or "" when unset.
func (s *PGStore) DefaultTimezone(ctx context.Context) (string, error) {
	var tz string
	err := s.pool.QueryRow(ctx, "default_timezone").Scan(&tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query default timezone: %w", err)
	}
	return tz, nil
}

// DiscordEmbedURL builds the message link for the event's Discord embed, or
// "" when no embed has been posted.
func (s *PGStore) DiscordEmbedURL(ctx context.Context, eventID int64) (string, error) {
	var guildID, channelID, messageID string
	err := s.pool.QueryRow(ctx, "discord_event_message", eventID).Scan(&guildID, &channelID, &messageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query discord embed for event %d: %w", eventID, err)
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID), nil
}

// VoiceChannelID returns the voice channel configured for a game, or "".
func (s *PGStore) VoiceChannelID(ctx context.Context, gameID string) (string, error) {
	var channelID string
	err := s.pool.QueryRow(ctx, "game_voice_channel", gameID).Scan(&channelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query voice channel for game %s: %w", gameID, err)
	}
	return channelID, nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.StartTime, &e.EndTime, &e.GameID,
			&e.Remind15m, &e.Remind1h, &e.Remind24h,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
