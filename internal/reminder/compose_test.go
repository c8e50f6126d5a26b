package reminder

import (
	"testing"
	"time"
)

func TestComposeTiers(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "Raid Night is starting now!"},
		{1, "Raid Night is starting now!"},
		{2, "Raid Night starts in 2 minutes at 7:00 PM EDT."},
		{30, "Raid Night starts in 30 minutes at 7:00 PM EDT."},
		{59, "Raid Night starts in 59 minutes at 7:00 PM EDT."},
		{60, "Raid Night starts in 1 hour at 7:00 PM EDT."}, // exactly one hour
		{61, "Raid Night starts in 1 hour at 7:00 PM EDT."},
		{90, "Raid Night starts in 2 hours at 7:00 PM EDT."},
		{150, "Raid Night starts in 3 hours at 7:00 PM EDT."}, // 2.5 rounds up
		{24 * 60, "Raid Night starts in 24 hours at 7:00 PM EDT."},
	}
	for _, tc := range cases {
		got := Compose("Raid Night", "7:00 PM EDT", tc.minutes)
		if got != tc.want {
			t.Errorf("minutes=%d: got %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestMinutesUntil(t *testing.T) {
	cases := []struct {
		name   string
		offset time.Duration
		want   int
	}{
		{"just started", -45 * time.Second, 0}, // clamped, never negative
		{"one minute", time.Minute, 1},
		{"rounds down", 89 * time.Second, 1},
		{"rounds up", 91 * time.Second, 2},
		{"one hour", time.Hour, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MinutesUntil(testNow, testNow.Add(tc.offset)); got != tc.want {
				t.Fatalf("offset %v: got %d, want %d", tc.offset, got, tc.want)
			}
		})
	}
}
