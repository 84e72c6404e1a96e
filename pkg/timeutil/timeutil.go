// Package timeutil provides timezone-aware time helpers for the matching
// engine. Participants live in arbitrary IANA timezones, so every helper
// takes a location instead of assuming one.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// LoadLocation resolves an IANA timezone name, falling back to UTC for
// unknown or empty names. Matching must not fail on a bad profile field.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StartOfDay returns 00:00:00 of t's day in the given location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns Monday 00:00:00 of t's week in the given location.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday-1)), loc)
}

// UTCDay truncates t to its UTC calendar day. Study-log entries are keyed
// by this value.
func UTCDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// IsSameDay checks if two times fall on the same day in the given location.
func IsSameDay(t1, t2 time.Time, loc *time.Location) bool {
	a, b := t1.In(loc), t2.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the absolute number of whole days between two times,
// measured on UTC day boundaries.
func DaysBetween(t1, t2 time.Time) int {
	a := UTCDay(t1)
	b := UTCDay(t2)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// ParseDate parses a date string (YYYY-MM-DD) in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, loc)
}

// MinutesOfDay returns minutes since midnight of t in its own location.
// Weekly availability windows are expressed in this unit.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
