package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixfit/pixfit/models"
)

func TestEpleyE1RM(t *testing.T) {
	assert.Equal(t, 100.0, EpleyE1RM(100, 0))
	assert.InDelta(t, 133.33, EpleyE1RM(100, 10), 0.01)
	assert.InDelta(t, 60.0*(1+5.0/30), EpleyE1RM(60, 5), 0.0001)
}

func TestTopRecords_EmptyHistory(t *testing.T) {
	db := newTestDB(t)
	calc := NewPRCalculator(db)

	records, err := calc.TopRecords(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTopRecords_ExcludesZeroRepsAndZeroWeight(t *testing.T) {
	db := newTestDB(t)
	calc := NewPRCalculator(db)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	itemID := seedSession(t, db, 1, day, "bench", "barbell")
	mustCreate(t, db, &models.Set{SessionItemID: itemID, SetIndex: 1, Reps: 0, WeightKG: 100})
	mustCreate(t, db, &models.Set{SessionItemID: itemID, SetIndex: 2, Reps: 5, WeightKG: 0})

	records, err := calc.TopRecords(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, records, "invalid sets must be dropped, not scored as zero")

	mustCreate(t, db, &models.Set{SessionItemID: itemID, SetIndex: 3, Reps: 5, WeightKG: 100})
	records, err = calc.TopRecords(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].BestReps)
	assert.Equal(t, 100.0, records[0].BestWeightKG)
	assert.Equal(t, 116.7, records[0].BestE1RM, "116.666... rounds to one decimal")
}

func TestTopRecords_TieKeepsFirstSet(t *testing.T) {
	db := newTestDB(t)
	calc := NewPRCalculator(db)

	// Same e1rm twice: 100x3 and 100x3 again later. The earlier set wins.
	day1 := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	item1 := seedSession(t, db, 1, day1, "bench", "barbell")
	item2 := seedSession(t, db, 1, day2, "bench", "barbell")
	mustCreate(t, db, &models.Set{SessionItemID: item1, SetIndex: 1, Reps: 3, WeightKG: 100, RPE: ptr(8.0)})
	mustCreate(t, db, &models.Set{SessionItemID: item2, SetIndex: 1, Reps: 3, WeightKG: 100})

	records, err := calc.TopRecords(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bench:barbell", records[0].Key)
	assert.InDelta(t, 110.0, records[0].BestE1RM, 0.01)
}

func TestTopRecords_RankedAndTruncated(t *testing.T) {
	db := newTestDB(t)
	calc := NewPRCalculator(db)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Ten distinct exercises with strictly increasing weights.
	for i := 0; i < 10; i++ {
		itemID := seedSession(t, db, 1, day, fmt.Sprintf("ex%d", i), "v")
		mustCreate(t, db, &models.Set{SessionItemID: itemID, SetIndex: 1, Reps: 5, WeightKG: float64(50 + i*10)})
	}

	records, err := calc.TopRecords(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 8)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].BestE1RM, records[i].BestE1RM)
	}
	assert.Equal(t, "ex9:v", records[0].Key)
	assert.Equal(t, "ex2:v", records[7].Key)
}

func TestTopRecords_LabelFallsBackToID(t *testing.T) {
	db := newTestDB(t)
	calc := NewPRCalculator(db)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	itemID := seedSession(t, db, 1, day, "bench", "barbell")
	mustCreate(t, db, &models.Set{SessionItemID: itemID, SetIndex: 1, Reps: 5, WeightKG: 80})

	records, err := calc.TopRecords(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bench", records[0].Exercise)
	assert.Equal(t, "barbell", records[0].Variation)
}

func ptr[T any](v T) *T { return &v }
