package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
)

func seedScan(t *testing.T, db *gorm.DB, userID uint, at time.Time) {
	t.Helper()
	mustCreate(t, db, &models.ScanLog{UserID: userID, MacroData: []byte(`{}`), CreatedAt: at})
}

func TestStreak_EmptyHistory(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	calc := NewStreakCalculator(db, fixedClock{now: now})

	res, err := calc.Current(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, res.Streak)
	assert.False(t, res.HasWorkoutToday)
	require.Len(t, res.Last7, 7)
	for _, d := range res.Last7 {
		assert.False(t, d.Did)
	}
	assert.Equal(t, "2025-03-06", res.Last7[0].Date)
	assert.Equal(t, "2025-03-12", res.Last7[6].Date)
}

func TestStreak_InactiveTodayBreaksImmediately(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	calc := NewStreakCalculator(db, fixedClock{now: now})

	// Five straight days ending yesterday; nothing today.
	for i := 1; i <= 5; i++ {
		seedSession(t, db, 1, now.AddDate(0, 0, -i), "row", "cable", [2]float64{10, 40})
	}

	res, err := calc.Current(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, res.Streak)
	assert.False(t, res.HasWorkoutToday)
	assert.False(t, res.Last7[6].Did)
	assert.True(t, res.Last7[5].Did)
}

func TestStreak_UnionOfWorkoutAndScanSignals(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	calc := NewStreakCalculator(db, fixedClock{now: now})

	seedScan(t, db, 1, now)                                                          // today: scan only
	seedSession(t, db, 1, now.AddDate(0, 0, -1), "dead", "conv", [2]float64{5, 140}) // yesterday: workout only
	seedSession(t, db, 1, now.AddDate(0, 0, -2), "dead", "conv", [2]float64{5, 140}) // both
	seedScan(t, db, 1, now.AddDate(0, 0, -2))
	// gap at -3

	res, err := calc.Current(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
	assert.False(t, res.HasWorkoutToday, "scan alone must not count as a workout")
}

func TestStreak_LongerThanSevenDays(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	calc := NewStreakCalculator(db, fixedClock{now: now})

	for i := 0; i < 10; i++ {
		seedSession(t, db, 1, now.AddDate(0, 0, -i), "press", "ohp", [2]float64{5, 60})
	}

	res, err := calc.Current(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Streak)
	require.Len(t, res.Last7, 7)
	for _, d := range res.Last7 {
		assert.True(t, d.Did, d.Date)
	}
	assert.True(t, res.HasWorkoutToday)
}

func TestStreak_SpansPastFetchWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	calc := NewStreakCalculator(db, fixedClock{now: now})

	// More consecutive active days than one bounded fetch covers; the walk
	// must report the full run, not stop at the fetch window.
	days := streakFetchDays + 5
	for i := 0; i < days; i++ {
		mustCreate(t, db, &models.WorkoutSession{UserID: 1, PerformedOn: DayOf(now).AddDate(0, 0, -i)})
	}
	// An old scan beyond the run must not extend it.
	seedScan(t, db, 1, DayOf(now).AddDate(0, 0, -(days+2)))

	res, err := calc.Current(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, days, res.Streak)
}
