package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestIsQuietHours(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"just before window", at(20, 59), false},
		{"window start", at(21, 0), true},
		{"late evening", at(23, 30), true},
		{"middle of night", at(3, 0), true},
		{"just before window end", at(7, 59), true},
		{"window end", at(8, 0), false},
		{"midday", at(12, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsQuietHours(tc.t))
		})
	}
}

func TestNextQuietHoursEnd(t *testing.T) {
	// Late evening rolls to the next morning
	got := NextQuietHoursEnd(at(22, 30))
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), got)

	// Early morning resolves the same day
	got = NextQuietHoursEnd(at(6, 0))
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), got)

	// Exactly 8 AM is already past the boundary
	got = NextQuietHoursEnd(at(8, 0))
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(start, end))
}
