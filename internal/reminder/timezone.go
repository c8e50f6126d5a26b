package reminder

import "time"

// zoneAuto is the sentinel a client stores when it never picked a zone.
const zoneAuto = "auto"

// ResolveTimezone resolves a usable zone name from the stored preference:
// an explicit preference wins, an absent one falls back to the system
// default, and "auto" or nothing resolves to UTC.
func ResolveTimezone(pref, systemDefault string) string {
	switch {
	case pref == zoneAuto:
		return "UTC"
	case pref != "":
		return pref
	case systemDefault != "" && systemDefault != zoneAuto:
		return systemDefault
	}
	return "UTC"
}

// LocationOrUTC loads an IANA zone, degrading to UTC when the name is
// invalid or unsupported rather than failing the tick.
func LocationOrUTC(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalTimeString formats an instant as a short local time with zone
// abbreviation, e.g. "7:00 PM EDT".
func LocalTimeString(t time.Time, zone string) string {
	return t.In(LocationOrUTC(zone)).Format("3:04 PM MST")
}

// LocalDayBounds returns the UTC instants spanning localNow's calendar day
// in its own location, midnight through 23:59:59.999. Building both bounds
// with the location applies the zone's current UTC offset, DST included.
func LocalDayBounds(localNow time.Time) (from, to time.Time) {
	y, m, d := localNow.Date()
	loc := localNow.Location()
	from = time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
	to = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc).UTC()
	return from, to
}
