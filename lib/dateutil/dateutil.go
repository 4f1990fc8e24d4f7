package dateutil

import (
	"time"
)

// ISOLayout is the canonical wire format for all calendar dates (YYYY-MM-DD).
const ISOLayout = "2006-01-02"

// ParseISO parses a canonical YYYY-MM-DD date string into a UTC date.
func ParseISO(value string) (time.Time, error) {
	return time.Parse(ISOLayout, value)
}

// FormatISO renders a date in the canonical YYYY-MM-DD format.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// MondayOf returns the Monday on/before the given date.
func MondayOf(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return t.AddDate(0, 0, -offset)
}

// CurrentWeekStart returns the Monday of the week containing now, truncated
// to a date.
func CurrentWeekStart() time.Time {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return MondayOf(day)
}

// AddWeeks moves a date forward by n whole weeks.
func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n*7)
}
