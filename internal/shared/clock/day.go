package clock

import "time"

// DayWindow returns the half-open window [start of day, start of next day) containing t,
// in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// ParseDay reads a YYYY-MM-DD date in loc; an empty value means today.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if raw == "" {
		return time.Now().In(loc), nil
	}
	return time.ParseInLocation(time.DateOnly, raw, loc)
}
