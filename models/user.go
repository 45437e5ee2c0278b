package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription tiers.
const (
	TierFree = "free"
	TierPlus = "plus"
)

// User represents an app user. Passwords are stored as bcrypt hashes only.
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Email         string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"size:255" json:"-"`
	Name          string     `gorm:"size:64" json:"name"`
	AvatarURL     string     `gorm:"size:512" json:"avatar_url"`
	Provider      string     `gorm:"size:32" json:"provider"`
	ProviderID    string     `gorm:"size:255" json:"provider_id"`
	RegisterIP    string     `gorm:"size:45" json:"-"`
	Tier          string     `gorm:"size:16;default:'free'" json:"tier"`
	PlusExpiresAt *time.Time `json:"plus_expires_at"`

	// Biometric profile captured during onboarding.
	Sex           string     `gorm:"size:16" json:"sex"`
	BirthDate     *time.Time `json:"birth_date"`
	HeightCM      float64    `json:"height_cm"`
	WeightKG      float64    `json:"weight_kg"`
	ActivityLevel string     `gorm:"size:32" json:"activity_level"`
	Goal          string     `gorm:"size:255" json:"goal"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// EffectiveTier resolves the tier at a point in time. A plus subscription
// with a past expiry falls back to free without mutating the row.
func (u *User) EffectiveTier(now time.Time) string {
	if u.Tier != TierPlus {
		return TierFree
	}
	if u.PlusExpiresAt != nil && u.PlusExpiresAt.Before(now) {
		return TierFree
	}
	return TierPlus
}
