// Package datemath provides timezone-safe calendar-date parsing and
// day/month counting. All engine inputs pass through DateOnly (or ParseDate)
// before comparison or arithmetic, so a timestamp stored as end-of-day UTC
// never shifts to the next calendar day in a positive-offset locale.
package datemath

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used throughout the system
const DateLayout = "2006-01-02"

// daysPerMonth is the fixed month length used by the legacy monthly path
const daysPerMonth = 30.0

// ParseDate extracts the calendar-date component of an ISO date or timestamp
// string, ignoring any time-of-day and timezone offset. "2025-01-31" and
// "2025-01-31T23:59:59Z" both parse to 2025-01-31 at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	if len(value) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}

	t, err := time.Parse(DateLayout, value[:len(DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// DateOnly normalizes a timestamp to UTC midnight of its calendar date,
// using the date components in the timestamp's own location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of days between two calendar dates.
// Both inputs are normalized to UTC midnight first, so the count never picks
// up a stray hour from a DST transition or a non-midnight timestamp.
func DaysBetween(a, b time.Time) int {
	da := DateOnly(a)
	db := DateOnly(b)

	days := int(db.Sub(da) / (24 * time.Hour))
	if days < 0 {
		return -days
	}
	return days
}

// MonthsBetween returns whole calendar months between two dates plus the
// fractional day remainder divided by 30.
//
// Deprecated: only the legacy monthly-compounding projection uses this.
// New code counts days with DaysBetween.
func MonthsBetween(a, b time.Time) float64 {
	da := DateOnly(a)
	db := DateOnly(b)
	if db.Before(da) {
		da, db = db, da
	}

	months := (db.Year()-da.Year())*12 + int(db.Month()-da.Month())
	anchor := da.AddDate(0, months, 0)
	if anchor.After(db) {
		months--
		anchor = da.AddDate(0, months, 0)
	}

	remainder := float64(DaysBetween(anchor, db)) / daysPerMonth
	return float64(months) + remainder
}

// Format renders a calendar date in the system date layout
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
