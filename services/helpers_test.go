package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixfit/pixfit/models"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WorkoutItem{},
		&models.WorkoutSession{},
		&models.SessionItem{},
		&models.Set{},
		&models.ScanLog{},
		&models.DietPlan{},
		&models.Payment{},
	))
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	require.NoError(t, db.Create(value).Error)
}

// seedSession creates a session on the given day with one item and the given
// (reps, weight) sets, returning the item id.
func seedSession(t *testing.T, db *gorm.DB, userID uint, day time.Time, exerciseID, variationID string, sets ...[2]float64) uint {
	t.Helper()
	session := models.WorkoutSession{UserID: userID, PerformedOn: DayOf(day)}
	require.NoError(t, db.Where("user_id = ? AND performed_on = ?", userID, DayOf(day)).FirstOrCreate(&session).Error)

	item := models.SessionItem{
		SessionID:   session.ID,
		ExerciseID:  exerciseID,
		VariationID: variationID,
	}
	mustCreate(t, db, &item)

	for i, s := range sets {
		mustCreate(t, db, &models.Set{
			SessionItemID: item.ID,
			SetIndex:      i + 1,
			Reps:          int(s[0]),
			WeightKG:      s[1],
		})
	}
	return item.ID
}
