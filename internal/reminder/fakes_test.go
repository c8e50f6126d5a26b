package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// In-memory collaborator fakes shared by the resolver and scheduler tests.

type fakeStore struct {
	events  []Event
	signups []Signup
	users   map[int64]User
	prefs   map[int64]string
	chars   map[int64][]Character
	tzUsers []UserTimezone
}

func (f *fakeStore) UpcomingEvents(ctx context.Context, now time.Time) ([]Event, error) {
	return f.events, nil
}

func (f *fakeStore) SignupsForEvents(ctx context.Context, eventIDs []int64) ([]Signup, error) {
	want := make(map[int64]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}
	var out []Signup
	for _, s := range f.signups {
		if want[s.EventID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) UsersByID(ctx context.Context, userIDs []int64) (map[int64]User, error) {
	out := make(map[int64]User)
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeStore) TimezonePrefs(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, id := range userIDs {
		if tz, ok := f.prefs[id]; ok {
			out[id] = tz
		}
	}
	return out, nil
}

func (f *fakeStore) CharactersByUser(ctx context.Context, userIDs []int64) (map[int64][]Character, error) {
	out := make(map[int64][]Character)
	for _, id := range userIDs {
		if cs, ok := f.chars[id]; ok {
			out[id] = cs
		}
	}
	return out, nil
}

func (f *fakeStore) UsersWithTimezone(ctx context.Context) ([]UserTimezone, error) {
	return f.tzUsers, nil
}

func (f *fakeStore) EventsForUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]Event, error) {
	signed := make(map[int64]bool)
	for _, s := range f.signups {
		if s.UserID != nil && *s.UserID == userID {
			signed[s.EventID] = true
		}
	}
	var out []Event
	for _, e := range f.events {
		if signed[e.ID] && !e.StartTime.Before(from) && !e.StartTime.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeClaims mimics the unique-insert semantics of the ledger.
type fakeClaims struct {
	mu     sync.Mutex
	taken  map[[2]int64]map[string]bool
	failOn string // window type that errors, for failure-path tests
}

func newFakeClaims() *fakeClaims {
	return &fakeClaims{taken: make(map[[2]int64]map[string]bool)}
}

func (f *fakeClaims) TryClaim(ctx context.Context, eventID, userID int64, windowType string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if windowType == f.failOn {
		return false, errors.New("ledger unavailable")
	}
	key := [2]int64{eventID, userID}
	if f.taken[key] == nil {
		f.taken[key] = make(map[string]bool)
	}
	if f.taken[key][windowType] {
		return false, nil
	}
	f.taken[key][windowType] = true
	return true, nil
}

func (f *fakeClaims) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, windows := range f.taken {
		n += len(windows)
	}
	return n
}

type sent struct {
	UserID  int64
	Type    string
	Title   string
	Message string
	Payload Payload
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sent
	optedOut map[int64]bool
	err      error
}

func (f *fakeNotifier) Create(ctx context.Context, userID int64, typ, title, message string, payload Payload) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.optedOut[userID] {
		return false, nil
	}
	f.sent = append(f.sent, sent{userID, typ, title, message, payload})
	return true, nil
}

type fakeSettings struct {
	tz string
}

func (f *fakeSettings) DefaultTimezone(ctx context.Context) (string, error) {
	return f.tz, nil
}

type fakeEnricher struct {
	embedURL string
	voice    map[string]string
	err      error
}

func (f *fakeEnricher) DiscordEmbedURL(ctx context.Context, eventID int64) (string, error) {
	return f.embedURL, f.err
}

func (f *fakeEnricher) VoiceChannelID(ctx context.Context, gameID string) (string, error) {
	return f.voice[gameID], f.err
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func i64(v int64) *int64 { return &v }

func strp(s string) *string { return &s }

func testScheduler(t *testing.T, store *fakeStore, claims *fakeClaims, notifier *fakeNotifier) *Scheduler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScheduler(store, claims, notifier, &fakeSettings{}, nil, nil, logger)
	s.now = func() time.Time { return testNow }
	return s
}
