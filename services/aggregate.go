package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
)

// DaySummary is one zero-filled bucket of the ranged activity summary.
type DaySummary struct {
	Date     string  `json:"date"`
	Workouts int     `json:"workouts"`
	Sets     int     `json:"sets"`
	VolumeKG float64 `json:"volume_kg"`
	Scans    int     `json:"scans"`
	Calories int     `json:"calories"`
}

// TodayStats is the lightweight "today" widget payload.
type TodayStats struct {
	Exercises int     `json:"exercises"`
	Sets      int     `json:"sets"`
	VolumeKG  float64 `json:"volume_kg"`
}

// Aggregator recomputes activity summaries from raw rows on every call.
// Nothing is materialized; a set's day is the day of its session, resolved
// through set -> session item -> session (sets carry no day of their own).
type Aggregator struct {
	db    *gorm.DB
	clock Clock
}

func NewAggregator(db *gorm.DB, clock Clock) *Aggregator {
	return &Aggregator{db: db, clock: clock}
}

// DailySummaries builds one aggregate per day over the inclusive [start, end]
// range. Days without activity stay as all-zero entries; the result is always
// exactly (end-start+1) buckets in chronological order.
func (a *Aggregator) DailySummaries(ctx context.Context, userID uint, start, end time.Time) ([]DaySummary, error) {
	start = DayOf(start)
	end = DayOf(end)

	buckets := make(map[string]*DaySummary)
	var order []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := DayKey(day)
		buckets[key] = &DaySummary{Date: key}
		order = append(order, key)
	}

	var sessions []models.WorkoutSession
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND performed_on >= ? AND performed_on < ?", userID, start, end.AddDate(0, 0, 1)).
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	sessionDay := make(map[uint]string, len(sessions))
	sessionIDs := make([]uint, 0, len(sessions))
	for _, s := range sessions {
		key := DayKey(s.PerformedOn)
		sessionDay[s.ID] = key
		sessionIDs = append(sessionIDs, s.ID)
		if b, ok := buckets[key]; ok {
			b.Workouts++
		}
	}

	if len(sessionIDs) > 0 {
		var items []models.SessionItem
		if err := a.db.WithContext(ctx).
			Where("session_id IN ?", sessionIDs).
			Find(&items).Error; err != nil {
			return nil, err
		}

		itemSession := make(map[uint]uint, len(items))
		itemIDs := make([]uint, 0, len(items))
		for _, it := range items {
			itemSession[it.ID] = it.SessionID
			itemIDs = append(itemIDs, it.ID)
		}

		if len(itemIDs) > 0 {
			var sets []models.Set
			if err := a.db.WithContext(ctx).
				Where("session_item_id IN ?", itemIDs).
				Find(&sets).Error; err != nil {
				return nil, err
			}
			for _, set := range sets {
				key, ok := sessionDay[itemSession[set.SessionItemID]]
				if !ok {
					continue
				}
				if b, ok := buckets[key]; ok {
					b.Sets++
					b.VolumeKG += float64(set.Reps) * set.WeightKG
				}
			}
		}
	}

	var scans []models.ScanLog
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end.AddDate(0, 0, 1)).
		Find(&scans).Error; err != nil {
		return nil, err
	}
	// Calories accumulate as raw floats and round once per day, so per-scan
	// fractions are not lost before the sum.
	calories := make(map[string]float64, len(order))
	for _, scan := range scans {
		key := DayKey(scan.CreatedAt)
		if b, ok := buckets[key]; ok {
			b.Scans++
			calories[key] += caloriesOf(scan.MacroData)
		}
	}

	out := make([]DaySummary, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		b.VolumeKG = round1(b.VolumeKG)
		b.Calories = int(math.Round(calories[key]))
		out = append(out, *b)
	}
	return out, nil
}

// TodaySummary returns the exercise/set/volume counts of today's session only.
// A missing session is not an error; it yields zeros and hasWorkout=false.
func (a *Aggregator) TodaySummary(ctx context.Context, userID uint) (stats TodayStats, hasWorkout bool, err error) {
	today := DayOf(a.clock.Now())

	var session models.WorkoutSession
	findErr := a.db.WithContext(ctx).
		Where("user_id = ? AND performed_on = ?", userID, today).
		First(&session).Error
	if findErr != nil {
		if findErr == gorm.ErrRecordNotFound {
			return TodayStats{}, false, nil
		}
		return TodayStats{}, false, findErr
	}

	var items []models.SessionItem
	if err := a.db.WithContext(ctx).
		Where("session_id = ?", session.ID).
		Find(&items).Error; err != nil {
		return TodayStats{}, true, err
	}

	stats.Exercises = len(items)
	if len(items) == 0 {
		return stats, true, nil
	}

	itemIDs := make([]uint, 0, len(items))
	for _, it := range items {
		itemIDs = append(itemIDs, it.ID)
	}

	var sets []models.Set
	if err := a.db.WithContext(ctx).
		Where("session_item_id IN ?", itemIDs).
		Find(&sets).Error; err != nil {
		return TodayStats{}, true, err
	}
	for _, set := range sets {
		stats.Sets++
		stats.VolumeKG += float64(set.Reps) * set.WeightKG
	}
	stats.VolumeKG = round1(stats.VolumeKG)
	return stats, true, nil
}

// caloriesOf extracts macros.calories from analyzer JSON, treating anything
// missing or non-numeric as zero.
func caloriesOf(raw []byte) float64 {
	if len(raw) == 0 {
		return 0
	}
	var payload struct {
		Macros struct {
			Calories json.Number `json:"calories"`
		} `json:"macros"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0
	}
	v, err := payload.Macros.Calories.Float64()
	if err != nil {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
