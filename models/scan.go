package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScanLog is an append-only record of one AI meal-photo analysis. MacroData
// holds the analyzer's structured JSON, at least
// {"macros":{"calories","protein_g","carbs_g","fats_g"}}.
type ScanLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	MacroData datatypes.JSON `json:"macro_data"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
