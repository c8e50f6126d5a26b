package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Job names recorded by the run tracker.
const (
	JobReminderTick = "event-reminders"
	JobDayOfTick    = "day-of-reminders"
)

// Scheduler drives the two periodic passes: the primary window tick and the
// legacy day-of tick. All per-window work inside a tick runs sequentially;
// the dominant cost is collaborator round-trips and those are batched.
type Scheduler struct {
	store    Store
	claims   ClaimStore
	notifier Notifier
	settings Settings
	enrich   Enricher
	runner   Runner
	logger   *slog.Logger

	now           func() time.Time
	tickInterval  time.Duration
	dayOfInterval time.Duration
}

// NewScheduler wires a scheduler. enrich may be nil (no payload enrichment);
// runner may be nil only when the ticker loop is never started.
func NewScheduler(store Store, claims ClaimStore, notifier Notifier, settings Settings, enrich Enricher, runner Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:         store,
		claims:        claims,
		notifier:      notifier,
		settings:      settings,
		enrich:        enrich,
		runner:        runner,
		logger:        logger,
		now:           time.Now,
		tickInterval:  defaultTickInterval,
		dayOfInterval: defaultDayOfInterval,
	}
}

// SetIntervals overrides the tick intervals. Zero keeps the default.
func (s *Scheduler) SetIntervals(tick, dayOf time.Duration) {
	if tick > 0 {
		s.tickInterval = tick
	}
	if dayOf > 0 {
		s.dayOfInterval = dayOf
	}
}

// Start runs both tickers until ctx is cancelled. Blocks; intended to be
// called with `go`. Each pass goes through the runner, whose overlap guard
// keeps a slow tick from stacking on itself.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Reminder scheduler started",
		"tick", s.tickInterval, "day_of_tick", s.dayOfInterval)

	primary := time.NewTicker(s.tickInterval)
	defer primary.Stop()
	dayOf := time.NewTicker(s.dayOfInterval)
	defer dayOf.Stop()

	for {
		select {
		case <-primary.C:
			s.runner.Execute(ctx, JobReminderTick, s.RunReminderTick)
		case <-dayOf.C:
			s.runner.Execute(ctx, JobDayOfTick, s.RunDayOfTick)
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		}
	}
}

// RunReminderTick performs one primary pass: load the event snapshot once,
// match each registry window, resolve recipients, and push each through the
// claim-and-deliver gate.
func (s *Scheduler) RunReminderTick(ctx context.Context) error {
	now := s.now()

	events, err := s.store.UpcomingEvents(ctx, now)
	if err != nil {
		return fmt.Errorf("load upcoming events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	defaultTZ := s.lazyDefaultTimezone()
	for _, w := range Windows {
		due := DueEvents(now, w, events)
		if len(due) == 0 {
			continue
		}
		inputs, err := ResolveRecipients(ctx, s.store, now, w, due)
		if err != nil {
			// One bad window must not abort the rest of the tick.
			s.logger.Error("Recipient resolution failed", "window", w.Type, "error", err)
			continue
		}
		for _, in := range inputs {
			s.claimAndDeliver(ctx, in, defaultTZ)
		}
	}
	return nil
}

// claimAndDeliver is the at-most-once gate: the ledger claim commits before
// the delivery attempt, so a downstream failure loses that one reminder
// rather than ever risking a duplicate on a later tick.
func (s *Scheduler) claimAndDeliver(ctx context.Context, in Input, defaultTZ func(context.Context) string) {
	claimed, err := s.claims.TryClaim(ctx, in.EventID, in.UserID, in.WindowType)
	if err != nil {
		s.logger.Warn("Ledger claim failed",
			"event_id", in.EventID, "user_id", in.UserID, "window", in.WindowType, "error", err)
		return
	}
	if !claimed {
		// Already handled by an earlier tick or another instance.
		return
	}

	zone := ResolveTimezone(in.Timezone, defaultTZ(ctx))
	message := Compose(in.Title, LocalTimeString(in.StartTime, zone), in.MinutesUntil)

	payload := Payload{
		EventID:          in.EventID,
		ReminderWindow:   in.WindowType,
		CharacterDisplay: in.CharacterDisplay,
	}
	if s.enrich != nil {
		if url, err := s.enrich.DiscordEmbedURL(ctx, in.EventID); err != nil {
			s.logger.Warn("Embed URL lookup failed", "event_id", in.EventID, "error", err)
		} else {
			payload.DiscordURL = url
		}
		if in.GameID != nil {
			if vc, err := s.enrich.VoiceChannelID(ctx, *in.GameID); err != nil {
				s.logger.Warn("Voice channel lookup failed", "game_id", *in.GameID, "error", err)
			} else {
				payload.VoiceChannelID = vc
			}
		}
	}

	delivered, err := s.notifier.Create(ctx, in.UserID, NotificationType,
		"Event reminder: "+in.Title, message, payload)
	if err != nil {
		// Claim already taken; log and move on, never retry.
		s.logger.Warn("Reminder delivery failed",
			"event_id", in.EventID, "user_id", in.UserID, "window", in.WindowType, "error", err)
		return
	}
	if !delivered {
		s.logger.Debug("Recipient opted out",
			"event_id", in.EventID, "user_id", in.UserID, "window", in.WindowType)
		return
	}
	s.logger.Info("Reminder sent",
		"event_id", in.EventID, "user_id", in.UserID,
		"window", in.WindowLabel, "minutes_until", in.MinutesUntil)
}

// lazyDefaultTimezone fetches the system default zone at most once per tick,
// and only if some recipient actually gets past the claim gate.
func (s *Scheduler) lazyDefaultTimezone() func(context.Context) string {
	var loaded bool
	var tz string
	return func(ctx context.Context) string {
		if loaded {
			return tz
		}
		loaded = true
		v, err := s.settings.DefaultTimezone(ctx)
		if err != nil {
			s.logger.Warn("Default timezone lookup failed, using UTC", "error", err)
			return tz
		}
		tz = v
		return tz
	}
}
