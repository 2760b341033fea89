// utils/dates.go
package utils

import (
	"os"
	"time"
)

// Quiet hours: no outbound SMS between 9 PM and 8 AM local business time.
const (
	QuietHoursStart = 21 // 9 PM
	QuietHoursEnd   = 8  // 8 AM
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// BusinessLocation returns the timezone all reminder scheduling runs in.
// Falls back to UTC if BUSINESS_TIMEZONE is unset or unknown.
func BusinessLocation() *time.Location {
	tz := os.Getenv("BUSINESS_TIMEZONE")
	if tz == "" {
		tz = "America/Chicago"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsQuietHours reports whether t falls in the 9PM-8AM window. The caller is
// expected to pass a time already converted to the business location.
func IsQuietHours(t time.Time) bool {
	h := t.Hour()
	return h >= QuietHoursStart || h < QuietHoursEnd
}

// NextQuietHoursEnd returns the next 8 AM boundary after t, in t's location.
func NextQuietHoursEnd(t time.Time) time.Time {
	year, month, day := t.Date()
	end := time.Date(year, month, day, QuietHoursEnd, 0, 0, 0, t.Location())
	if !t.Before(end) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}
