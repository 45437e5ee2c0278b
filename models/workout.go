package models

import "time"

// WorkoutItem is an exercise+variation a user added to their persistent plan.
// Catalog titles are copied at insert time so historical display survives
// catalog edits.
type WorkoutItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	GroupID        string    `gorm:"size:64" json:"group_id"`
	ExerciseID     string    `gorm:"size:64;not null" json:"exercise_id"`
	VariationID    string    `gorm:"size:64;not null" json:"variation_id"`
	ExerciseTitle  string    `gorm:"size:255" json:"exercise_title"`
	VariationTitle string    `gorm:"size:255" json:"variation_title"`
	CreatedAt      time.Time `json:"created_at"`
}

// WorkoutSession is a user's single workout record for one calendar day (UTC).
// Unique per (user_id, performed_on); re-marking "today" returns the existing
// row rather than duplicating.
type WorkoutSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uniq_user_day" json:"user_id"`
	PerformedOn time.Time `gorm:"not null;uniqueIndex:uniq_user_day" json:"performed_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionItem places a plan item into a specific day's session. Exercise and
// variation identity is denormalized so a later plan-item deletion leaves the
// historical record displayable.
type SessionItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      uint      `gorm:"index;not null" json:"session_id"`
	WorkoutItemID  uint      `gorm:"index" json:"workout_item_id"`
	ExerciseID     string    `gorm:"size:64;not null" json:"exercise_id"`
	VariationID    string    `gorm:"size:64;not null" json:"variation_id"`
	ExerciseTitle  string    `gorm:"size:255" json:"exercise_title"`
	VariationTitle string    `gorm:"size:255" json:"variation_title"`
	CreatedAt      time.Time `json:"created_at"`
	Sets           []Set     `gorm:"foreignKey:SessionItemID" json:"sets"`
}

// Set is one logged reps+weight entry under a session item. SetIndex values
// are strictly increasing in insertion order and are never reused after a
// deletion, so they need not be contiguous.
type Set struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionItemID uint      `gorm:"index;not null" json:"session_item_id"`
	SetIndex      int       `gorm:"not null" json:"set_index"`
	Reps          int       `gorm:"not null" json:"reps"`
	WeightKG      float64   `gorm:"not null" json:"weight_kg"`
	RPE           *float64  `json:"rpe,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
