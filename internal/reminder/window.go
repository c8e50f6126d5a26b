package reminder

import "time"

// Window describes one reminder lead time. Enabled reads the per-event flag
// that opts the event into this window.
type Window struct {
	Type    string
	Label   string
	Lead    time.Duration
	Enabled func(Event) bool
}

// Windows is the registry, ordered shortest lead first. Adding a window here
// is the whole change — matching, claiming, and delivery are window-agnostic.
var Windows = []Window{
	{Type: Window15Min, Label: "15 minutes", Lead: 15 * time.Minute, Enabled: func(e Event) bool { return e.Remind15m }},
	{Type: Window1Hour, Label: "1 hour", Lead: time.Hour, Enabled: func(e Event) bool { return e.Remind1h }},
	{Type: Window24Hour, Label: "24 hours", Lead: 24 * time.Hour, Enabled: func(e Event) bool { return e.Remind24h }},
}

// DueEvents returns the subset of events currently due for w. An event is
// due when its window flag is set and its start lies within
// [now - startedGrace, now + w.Lead], both bounds inclusive. Windows are
// evaluated independently; nothing assumes an event matches at most one.
func DueEvents(now time.Time, w Window, events []Event) []Event {
	var due []Event
	for _, e := range events {
		if !w.Enabled(e) {
			continue
		}
		until := e.StartTime.Sub(now)
		if until >= -startedGrace && until <= w.Lead {
			due = append(due, e)
		}
	}
	return due
}
