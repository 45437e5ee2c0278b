package models

import (
	"time"

	"gorm.io/datatypes"
)

// DietPlan stores an AI-generated diet plan for a user. The newest row per
// user is the active plan; older rows are kept for history.
type DietPlan struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Plan      datatypes.JSON `json:"plan"`
	Model     string         `gorm:"size:64" json:"model"`
	CreatedAt time.Time      `json:"created_at"`
}
