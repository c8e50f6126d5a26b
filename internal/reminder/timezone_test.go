package reminder

import (
	"testing"
	"time"
)

func TestResolveTimezone(t *testing.T) {
	cases := []struct {
		name string
		pref string
		def  string
		want string
	}{
		{"explicit preference wins", "America/New_York", "Europe/Berlin", "America/New_York"},
		{"no preference falls to default", "", "Europe/Berlin", "Europe/Berlin"},
		{"nothing set falls to UTC", "", "", "UTC"},
		{"auto resolves to UTC", "auto", "Europe/Berlin", "UTC"},
		{"auto default still falls to UTC", "", "auto", "UTC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveTimezone(tc.pref, tc.def); got != tc.want {
				t.Fatalf("ResolveTimezone(%q, %q) = %q, want %q", tc.pref, tc.def, got, tc.want)
			}
		})
	}
}

func TestLocationOrUTCInvalidZone(t *testing.T) {
	if loc := LocationOrUTC("Not/AZone"); loc != time.UTC {
		t.Fatalf("invalid zone should degrade to UTC, got %v", loc)
	}
	if loc := LocationOrUTC(""); loc != time.UTC {
		t.Fatalf("empty zone should be UTC, got %v", loc)
	}
}

func TestLocalTimeString(t *testing.T) {
	// 23:00 UTC on a June day is 7:00 PM in New York (EDT, UTC-4).
	start := time.Date(2025, time.June, 10, 23, 0, 0, 0, time.UTC)
	if got := LocalTimeString(start, "America/New_York"); got != "7:00 PM EDT" {
		t.Fatalf("got %q, want %q", got, "7:00 PM EDT")
	}
	if got := LocalTimeString(start, "bogus"); got != "11:00 PM UTC" {
		t.Fatalf("invalid zone: got %q, want %q", got, "11:00 PM UTC")
	}
}

func TestLocalDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	localNow := time.Date(2025, time.June, 10, 9, 5, 0, 0, loc)

	from, to := LocalDayBounds(localNow)

	// EDT is UTC-4, so local midnight is 04:00 UTC.
	wantFrom := time.Date(2025, time.June, 10, 4, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, time.June, 11, 3, 59, 59, int(999*time.Millisecond), time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
}

func TestLocalDayBoundsStandardTime(t *testing.T) {
	// Same zone in January uses EST (UTC-5); the bounds must follow the
	// zone's offset for that date, not a fixed one.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	localNow := time.Date(2025, time.January, 15, 9, 5, 0, 0, loc)

	from, _ := LocalDayBounds(localNow)
	wantFrom := time.Date(2025, time.January, 15, 5, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
}
