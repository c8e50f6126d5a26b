package reminder

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.June, 10, 13, 5, 0, 0, time.UTC)

func eventStarting(id int64, offset time.Duration) Event {
	return Event{
		ID:        id,
		Title:     "Raid Night",
		StartTime: testNow.Add(offset),
		EndTime:   testNow.Add(offset + 2*time.Hour),
		Remind15m: true,
		Remind1h:  true,
		Remind24h: true,
	}
}

func window(t *testing.T, typ string) Window {
	t.Helper()
	for _, w := range Windows {
		if w.Type == typ {
			return w
		}
	}
	t.Fatalf("unknown window %q", typ)
	return Window{}
}

func TestDueEventsBoundaries(t *testing.T) {
	w := window(t, Window1Hour)

	cases := []struct {
		name   string
		offset time.Duration
		due    bool
	}{
		{"exactly at lead", time.Hour, true},
		{"just past lead", time.Hour + time.Millisecond, false},
		{"inside window", 30 * time.Minute, true},
		{"inside grace", -89999 * time.Millisecond, true},
		{"exactly at grace", -90 * time.Second, true},
		{"past grace", -90001 * time.Millisecond, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			due := DueEvents(testNow, w, []Event{eventStarting(1, tc.offset)})
			if got := len(due) == 1; got != tc.due {
				t.Fatalf("offset %v: due=%v, want %v", tc.offset, got, tc.due)
			}
		})
	}
}

func TestDueEventsFlagGating(t *testing.T) {
	e := eventStarting(1, 10*time.Minute)
	e.Remind15m = false

	if due := DueEvents(testNow, window(t, Window15Min), []Event{e}); len(due) != 0 {
		t.Fatalf("event with disabled flag matched: %v", due)
	}
	if due := DueEvents(testNow, window(t, Window1Hour), []Event{e}); len(due) != 1 {
		t.Fatalf("other window should be unaffected by the 15min flag")
	}
}

func TestDueEventsWindowsIndependent(t *testing.T) {
	// An event 10 minutes out is inside both the 15min and 1hour ranges;
	// the matcher must report it for each window it evaluates.
	e := eventStarting(1, 10*time.Minute)

	for _, typ := range []string{Window15Min, Window1Hour, Window24Hour} {
		if due := DueEvents(testNow, window(t, typ), []Event{e}); len(due) != 1 {
			t.Fatalf("window %s: want due, got %d events", typ, len(due))
		}
	}
}

func TestDueEventsEmptyInput(t *testing.T) {
	if due := DueEvents(testNow, window(t, Window15Min), nil); due != nil {
		t.Fatalf("want nil for no events, got %v", due)
	}
}
