package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixfit/pixfit/models"
)

func TestScanGate_FreeTierWithinLimit(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC) // Wednesday
	gate := NewScanGate(db, fixedClock{now: now}, 3)

	user := models.User{Tier: models.TierFree}
	mustCreate(t, db, &user)
	seedScan(t, db, user.ID, now.Add(-2*time.Hour))
	seedScan(t, db, user.ID, now.AddDate(0, 0, -1))

	usage, err := gate.Check(context.Background(), &user)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", usage.WeekID)
	assert.Equal(t, 2, usage.Used)
	assert.Equal(t, 3, usage.Limit)
}

func TestScanGate_FreeTierExhausted(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	gate := NewScanGate(db, fixedClock{now: now}, 3)

	user := models.User{Tier: models.TierFree}
	mustCreate(t, db, &user)
	for i := 0; i < 3; i++ {
		seedScan(t, db, user.ID, now.Add(-time.Duration(i+1)*time.Hour))
	}

	usage, err := gate.Check(context.Background(), &user)
	require.ErrorIs(t, err, ErrScanLimitReached)
	require.NotNil(t, usage)
	assert.Equal(t, 3, usage.Used)
}

func TestScanGate_LastWeekDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	// Sunday: the week still runs from the previous Monday.
	now := time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC)
	gate := NewScanGate(db, fixedClock{now: now}, 3)

	user := models.User{Tier: models.TierFree}
	mustCreate(t, db, &user)
	// Previous Sunday, outside the window.
	seedScan(t, db, user.ID, time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC))
	for i := 0; i < 3; i++ {
		seedScan(t, db, user.ID, time.Date(2025, 3, 10, 8+i, 0, 0, 0, time.UTC))
	}

	usage, err := gate.Check(context.Background(), &user)
	require.ErrorIs(t, err, ErrScanLimitReached)
	assert.Equal(t, "2025-03-10", usage.WeekID)
	assert.Equal(t, 3, usage.Used)
}

func TestScanGate_PlusTierBypasses(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	gate := NewScanGate(db, fixedClock{now: now}, 3)

	expiry := now.AddDate(0, 0, 10)
	user := models.User{Tier: models.TierPlus, PlusExpiresAt: &expiry}
	mustCreate(t, db, &user)
	for i := 0; i < 5; i++ {
		seedScan(t, db, user.ID, now.Add(-time.Duration(i+1)*time.Hour))
	}

	usage, err := gate.Check(context.Background(), &user)
	require.NoError(t, err)
	assert.Zero(t, usage.Used)
}

func TestScanGate_ExpiredPlusCountsAsFree(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	gate := NewScanGate(db, fixedClock{now: now}, 3)

	expiry := now.AddDate(0, 0, -1)
	user := models.User{Tier: models.TierPlus, PlusExpiresAt: &expiry}
	mustCreate(t, db, &user)
	for i := 0; i < 3; i++ {
		seedScan(t, db, user.ID, now.Add(-time.Duration(i+1)*time.Hour))
	}

	_, err := gate.Check(context.Background(), &user)
	require.ErrorIs(t, err, ErrScanLimitReached)
}

func TestScanGate_ExactWeekBoundaries(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	gate := NewScanGate(db, fixedClock{now: now}, 3)

	user := models.User{Tier: models.TierFree}
	mustCreate(t, db, &user)

	// Exactly Monday 00:00:00 UTC opens the current week.
	seedScan(t, db, user.ID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	// Sunday 23:59:59.999 closes it.
	seedScan(t, db, user.ID, time.Date(2025, 3, 16, 23, 59, 59, 999000000, time.UTC))
	// Next Monday 00:00:00 already belongs to the following week.
	seedScan(t, db, user.ID, time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC))

	usage, err := gate.Check(context.Background(), &user)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Used)
}
