package timecalc

import (
	"fmt"
	"time"
)

// DurationHours derives a time entry's duration in hours from its start and
// end timestamps. The result is clamped to zero when end is at or before
// start. The derived value is what gets sent to the server as the
// authoritative duration field.
func DurationHours(start, end time.Time) float64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return d.Hours()
}

// FormatHours formats a fractional hour count like "8.5h" or "0.25h",
// trimming trailing zeros.
func FormatHours(hours float64) string {
	s := fmt.Sprintf("%.2f", hours)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s + "h"
}

// ParseClock parses a wall-clock time like "09:00" or "17:30" on the given
// date, in the date's location.
func ParseClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want HH:MM): %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}
