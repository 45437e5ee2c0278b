package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekMonday(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "2025-03-10"},
		{"midweek", time.Date(2025, 3, 12, 18, 30, 0, 0, time.UTC), "2025-03-10"},
		{"saturday", time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC), "2025-03-10"},
		{"sunday belongs to the prior monday", time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC), "2025-03-10"},
		{"next monday starts a new week", time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), "2025-03-17"},
		{"year boundary", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2025-12-29"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DayKey(WeekMonday(tc.in)))
		})
	}
}

func TestDayOf(t *testing.T) {
	in := time.Date(2025, 3, 12, 23, 45, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), DayOf(in))

	// Non-UTC inputs normalize to the UTC day.
	loc := time.FixedZone("minus5", -5*3600)
	late := time.Date(2025, 3, 12, 22, 0, 0, 0, loc) // 03:00 UTC next day
	assert.Equal(t, "2025-03-13", DayKey(late))
}
