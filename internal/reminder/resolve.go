package reminder

import (
	"context"
	"fmt"
	"time"
)

// ResolveRecipients expands the due events of one window into per-recipient
// reminder inputs. All collaborator loads are batched: one signup query for
// the whole event set, then one query each for users, timezone preferences,
// and characters over the distinct user union — never per recipient.
func ResolveRecipients(ctx context.Context, st Store, now time.Time, w Window, due []Event) ([]Input, error) {
	eventIDs := make([]int64, 0, len(due))
	for _, e := range due {
		eventIDs = append(eventIDs, e.ID)
	}

	signups, err := st.SignupsForEvents(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("load signups: %w", err)
	}

	// Group by event, dropping anonymous signups, and collect the distinct
	// user union for the batch loads.
	byEvent := make(map[int64][]int64)
	seen := make(map[int64]bool)
	var userIDs []int64
	for _, s := range signups {
		if s.UserID == nil {
			continue
		}
		uid := *s.UserID
		byEvent[s.EventID] = append(byEvent[s.EventID], uid)
		if !seen[uid] {
			seen[uid] = true
			userIDs = append(userIDs, uid)
		}
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	users, err := st.UsersByID(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	prefs, err := st.TimezonePrefs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load timezone preferences: %w", err)
	}
	chars, err := st.CharactersByUser(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}

	var inputs []Input
	for _, e := range due {
		mins := MinutesUntil(now, e.StartTime)
		for _, uid := range byEvent[e.ID] {
			if _, ok := users[uid]; !ok {
				// Signup pointing at a missing user record: skip, don't abort.
				continue
			}
			inputs = append(inputs, Input{
				EventID:          e.ID,
				UserID:           uid,
				WindowType:       w.Type,
				WindowLabel:      w.Label,
				Title:            e.Title,
				StartTime:        e.StartTime,
				MinutesUntil:     mins,
				CharacterDisplay: characterDisplay(chars[uid], e.GameID),
				Timezone:         prefs[uid],
				GameID:           e.GameID,
			})
		}
	}
	return inputs, nil
}

// characterDisplay picks the character to show: one matching the event's
// game if any, otherwise the first loaded (deterministic — load order is
// fixed). Returns "Name (Class)", "Name" without a class, or "" with no
// characters at all.
func characterDisplay(list []Character, gameID *string) string {
	if len(list) == 0 {
		return ""
	}
	pick := list[0]
	if gameID != nil {
		for _, c := range list {
			if c.GameID == *gameID {
				pick = c
				break
			}
		}
	}
	if pick.Class == "" {
		return pick.Name
	}
	return pick.Name + " (" + pick.Class + ")"
}
