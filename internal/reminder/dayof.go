package reminder

import (
	"context"
	"fmt"
)

// RunDayOfTick is the superseded "morning reminder" pass, kept for users who
// predate the window registry. For each user with an explicit timezone it
// checks whether their local clock is inside the 09:00 acceptance window,
// then reminds them of every signed-up event starting on their local
// calendar day. Claims reuse the 24hour type, so whichever of this path and
// the 24-hour window fires first wins the triple and the other is silently
// skipped — no ordering between the two is defined or needed.
func (s *Scheduler) RunDayOfTick(ctx context.Context) error {
	now := s.now()

	prefs, err := s.store.UsersWithTimezone(ctx)
	if err != nil {
		return fmt.Errorf("load timezone preferences: %w", err)
	}

	defaultTZ := s.lazyDefaultTimezone()
	for _, p := range prefs {
		// An invalid zone degrades to UTC-hour matching instead of
		// failing the whole pass.
		localNow := now.In(LocationOrUTC(p.Timezone))
		if localNow.Hour() != dayOfHour || localNow.Minute() >= dayOfWindowMinutes {
			continue
		}

		from, to := LocalDayBounds(localNow)
		events, err := s.store.EventsForUserBetween(ctx, p.UserID, from, to)
		if err != nil {
			s.logger.Warn("Day-of event load failed", "user_id", p.UserID, "error", err)
			continue
		}

		for _, e := range events {
			s.claimAndDeliver(ctx, Input{
				EventID:      e.ID,
				UserID:       p.UserID,
				WindowType:   Window24Hour,
				WindowLabel:  "24 hours",
				Title:        e.Title,
				StartTime:    e.StartTime,
				MinutesUntil: MinutesUntil(now, e.StartTime),
				Timezone:     p.Timezone,
				GameID:       e.GameID,
			}, defaultTZ)
		}
	}
	return nil
}
