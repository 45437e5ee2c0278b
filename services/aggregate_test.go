package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixfit/pixfit/models"
)

func TestDailySummaries_EmptyRangeIsZeroFilled(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	agg := NewAggregator(db, fixedClock{now: now})

	start := DayOf(now).AddDate(0, 0, -6)
	days, err := agg.DailySummaries(context.Background(), 1, start, now)
	require.NoError(t, err)
	require.Len(t, days, 7)

	assert.Equal(t, "2025-03-06", days[0].Date)
	assert.Equal(t, "2025-03-12", days[6].Date)
	for _, d := range days {
		assert.Zero(t, d.Workouts)
		assert.Zero(t, d.Sets)
		assert.Zero(t, d.VolumeKG)
		assert.Zero(t, d.Scans)
		assert.Zero(t, d.Calories)
	}
}

func TestDailySummaries_SetsCountTowardSessionDay(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(db, fixedClock{now: now})

	twoDaysAgo := now.AddDate(0, 0, -2)
	seedSession(t, db, 1, twoDaysAgo, "bench", "barbell",
		[2]float64{10, 100},
		[2]float64{8, 80},
	)
	// Another user's session on the same day must not leak in.
	seedSession(t, db, 2, twoDaysAgo, "bench", "barbell", [2]float64{5, 200})

	days, err := agg.DailySummaries(context.Background(), 1, now.AddDate(0, 0, -6), now)
	require.NoError(t, err)
	require.Len(t, days, 7)

	target := days[4]
	assert.Equal(t, "2025-03-10", target.Date)
	assert.Equal(t, 1, target.Workouts)
	assert.Equal(t, 2, target.Sets)
	assert.Equal(t, 1640.0, target.VolumeKG)

	for i, d := range days {
		if i == 4 {
			continue
		}
		assert.Zero(t, d.Workouts, d.Date)
		assert.Zero(t, d.Sets, d.Date)
	}
}

func TestDailySummaries_ScanCalories(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(db, fixedClock{now: now})

	yesterday := now.AddDate(0, 0, -1)
	mustCreate(t, db, &models.ScanLog{
		UserID:    1,
		MacroData: []byte(`{"label":"rice bowl","macros":{"calories":523.4,"protein_g":30}}`),
		CreatedAt: yesterday,
	})
	mustCreate(t, db, &models.ScanLog{
		UserID:    1,
		MacroData: []byte(`{"macros":{"calories":"not a number"}}`),
		CreatedAt: yesterday,
	})

	days, err := agg.DailySummaries(context.Background(), 1, now.AddDate(0, 0, -2), now)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, 2, days[1].Scans)
	assert.Equal(t, 523, days[1].Calories)
}

func TestDailySummaries_CaloriesRoundOncePerDay(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(db, fixedClock{now: now})

	// 523.4 + 210.3 = 733.7. Rounding each scan first would lose the
	// fractions and give 733; the day total must round the sum to 734.
	for _, cal := range []string{"523.4", "210.3"} {
		mustCreate(t, db, &models.ScanLog{
			UserID:    1,
			MacroData: []byte(`{"macros":{"calories":` + cal + `}}`),
			CreatedAt: now,
		})
	}

	days, err := agg.DailySummaries(context.Background(), 1, now, now)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 2, days[0].Scans)
	assert.Equal(t, 734, days[0].Calories)
}

func TestTodaySummary_NoSession(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(db, fixedClock{now: now})

	stats, hasWorkout, err := agg.TodaySummary(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, hasWorkout)
	assert.Zero(t, stats.Exercises)
	assert.Zero(t, stats.Sets)
	assert.Zero(t, stats.VolumeKG)
}

func TestTodaySummary_CountsTodayOnly(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(db, fixedClock{now: now})

	seedSession(t, db, 1, now, "squat", "highbar", [2]float64{5, 120}, [2]float64{5, 120})
	seedSession(t, db, 1, now.AddDate(0, 0, -1), "squat", "highbar", [2]float64{5, 200})

	stats, hasWorkout, err := agg.TodaySummary(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, hasWorkout)
	assert.Equal(t, 1, stats.Exercises)
	assert.Equal(t, 2, stats.Sets)
	assert.Equal(t, 1200.0, stats.VolumeKG)
}
