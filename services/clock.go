package services

import "time"

// Clock abstracts "now" so day-boundary logic is testable. All computations
// in this package anchor to UTC; users have no per-timezone day boundaries.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}

// DayOf truncates a timestamp to its UTC calendar day (midnight UTC).
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a day as its canonical YYYY-MM-DD identifier.
func DayKey(t time.Time) string {
	return DayOf(t).Format("2006-01-02")
}

// WeekMonday returns the UTC midnight of the Monday beginning the ISO week
// that contains t: normalize to midnight, then step back (weekday+6)%7 days
// where weekday 0 is Sunday.
func WeekMonday(t time.Time) time.Time {
	day := DayOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
