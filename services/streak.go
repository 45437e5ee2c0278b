package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
)

// streakFetchDays bounds the initial row fetch. Streaks running past the
// window trigger one unbounded refetch, so the result is never truncated.
const streakFetchDays = 365

// StreakDay is one entry of the fixed trailing-7-day trail.
type StreakDay struct {
	Date string `json:"date"`
	Did  bool   `json:"did"`
}

// StreakResult is the full streak payload. Streak counts consecutive active
// days ending at today; Last7 is a fixed chronological window independent of
// where the streak broke; HasWorkoutToday is the workout-only signal.
type StreakResult struct {
	Streak          int         `json:"streak"`
	Last7           []StreakDay `json:"last7"`
	HasWorkoutToday bool        `json:"hasWorkoutToday"`
}

// StreakCalculator derives streaks from the union of two independent daily
// signals: a workout session on the day, or at least one meal scan on the day.
type StreakCalculator struct {
	db    *gorm.DB
	clock Clock
}

func NewStreakCalculator(db *gorm.DB, clock Clock) *StreakCalculator {
	return &StreakCalculator{db: db, clock: clock}
}

// Current walks backward from today while each visited day is active. If
// today itself is inactive the streak is 0; the walk never skips today and
// resumes from yesterday. A user with zero history is not an error.
func (s *StreakCalculator) Current(ctx context.Context, userID uint) (*StreakResult, error) {
	today := DayOf(s.clock.Now())
	horizon := today.AddDate(0, 0, -(streakFetchDays - 1))

	workoutDays, scanDays, err := s.activeDays(ctx, userID, &horizon)
	if err != nil {
		return nil, err
	}

	active := func(key string) bool {
		return workoutDays[key] || scanDays[key]
	}

	walk := func() int {
		n := 0
		for day := today; active(DayKey(day)); day = day.AddDate(0, 0, -1) {
			n++
		}
		return n
	}

	streak := walk()
	if streak >= streakFetchDays {
		// Every day back to the horizon is active; the streak may continue
		// beyond the window, so redo the walk over the full history.
		workoutDays, scanDays, err = s.activeDays(ctx, userID, nil)
		if err != nil {
			return nil, err
		}
		streak = walk()
	}

	last7 := make([]StreakDay, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		key := DayKey(day)
		last7 = append(last7, StreakDay{Date: key, Did: active(key)})
	}

	return &StreakResult{
		Streak:          streak,
		Last7:           last7,
		HasWorkoutToday: workoutDays[DayKey(today)],
	}, nil
}

// activeDays loads the user's distinct workout days and scan days as
// day-keyed lookups. A nil since loads the full history.
func (s *StreakCalculator) activeDays(ctx context.Context, userID uint, since *time.Time) (workouts, scans map[string]bool, err error) {
	sessionQuery := s.db.WithContext(ctx).
		Select("performed_on").
		Where("user_id = ?", userID)
	if since != nil {
		sessionQuery = sessionQuery.Where("performed_on >= ?", *since)
	}
	var sessions []models.WorkoutSession
	if err := sessionQuery.Find(&sessions).Error; err != nil {
		return nil, nil, err
	}
	workouts = make(map[string]bool, len(sessions))
	for _, session := range sessions {
		workouts[DayKey(session.PerformedOn)] = true
	}

	scanQuery := s.db.WithContext(ctx).
		Select("created_at").
		Where("user_id = ?", userID)
	if since != nil {
		scanQuery = scanQuery.Where("created_at >= ?", *since)
	}
	var logs []models.ScanLog
	if err := scanQuery.Find(&logs).Error; err != nil {
		return nil, nil, err
	}
	scans = make(map[string]bool, len(logs))
	for _, log := range logs {
		scans[DayKey(log.CreatedAt)] = true
	}

	return workouts, scans, nil
}
