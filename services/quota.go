package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
)

// ErrScanLimitReached signals the weekly free-tier scan quota is used up.
// It is a business-rule rejection, not a failure.
var ErrScanLimitReached = errors.New("weekly scan limit reached")

// QuotaUsage describes the current ISO week's scan usage. WeekID is the
// YYYY-MM-DD date of the Monday beginning the week and doubles as an
// idempotent bucket key.
type QuotaUsage struct {
	WeekID string `json:"weekId"`
	Used   int    `json:"used"`
	Limit  int    `json:"limit"`
}

// ScanGate decides whether a new AI meal-scan request is permitted. The check
// is read-only: the quota is re-derived from raw scan-log counts every time,
// so a request failing mid-flight never falsely consumes quota. A concurrent
// burst can race past the limit; accepted, there is no reservation step.
type ScanGate struct {
	db    *gorm.DB
	clock Clock
	limit int
}

func NewScanGate(db *gorm.DB, clock Clock, limit int) *ScanGate {
	return &ScanGate{db: db, clock: clock, limit: limit}
}

// Check returns the current usage and ErrScanLimitReached when a free-tier
// user has exhausted the week. Plus-tier users bypass the count entirely.
func (g *ScanGate) Check(ctx context.Context, user *models.User) (*QuotaUsage, error) {
	now := g.clock.Now()
	monday := WeekMonday(now)
	usage := &QuotaUsage{WeekID: DayKey(monday), Limit: g.limit}

	if user.EffectiveTier(now) == models.TierPlus {
		return usage, nil
	}

	var used int64
	if err := g.db.WithContext(ctx).
		Model(&models.ScanLog{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", user.ID, monday, monday.AddDate(0, 0, 7)).
		Count(&used).Error; err != nil {
		return nil, err
	}
	usage.Used = int(used)

	if usage.Used >= g.limit {
		return usage, ErrScanLimitReached
	}
	return usage, nil
}
