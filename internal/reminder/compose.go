package reminder

import (
	"fmt"
	"math"
	"time"
)

// MinutesUntil returns whole minutes from now to start, rounded to nearest
// and clamped at zero so an event that has just started never reads as
// negative.
func MinutesUntil(now, start time.Time) int {
	m := int(math.Round(float64(start.Sub(now)) / float64(time.Minute)))
	if m < 0 {
		return 0
	}
	return m
}

// Compose builds the reminder body. localTime is the event start formatted
// in the recipient's resolved zone.
func Compose(title, localTime string, minutesUntil int) string {
	switch {
	case minutesUntil <= 1:
		return title + " is starting now!"
	case minutesUntil < 60:
		return fmt.Sprintf("%s starts in %d minutes at %s.", title, minutesUntil, localTime)
	}
	hours := int(math.Round(float64(minutesUntil) / 60))
	if hours == 1 {
		return fmt.Sprintf("%s starts in 1 hour at %s.", title, localTime)
	}
	return fmt.Sprintf("%s starts in %d hours at %s.", title, hours, localTime)
}
