package services

import (
	"context"
	"encoding/json"
)

// MacroBreakdown is the macro-nutrient estimate for one analyzed meal.
type MacroBreakdown struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

// MealAnalysis is the structured result of one meal-photo analysis.
type MealAnalysis struct {
	Label      string         `json:"label"`
	Confidence float64        `json:"confidence"`
	Macros     MacroBreakdown `json:"macros"`
}

// DietProfile is the biometric input for diet-plan generation.
type DietProfile struct {
	Sex           string  `json:"sex"`
	Age           int     `json:"age"`
	HeightCM      float64 `json:"height_cm"`
	WeightKG      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// Analyzer is the opaque generative-AI capability: vision analysis of meal
// photos and chat-based diet-plan generation. Implementations return
// structured JSON or fail; callers do not retry.
type Analyzer interface {
	AnalyzeMeal(ctx context.Context, image []byte, mimeType string) (*MealAnalysis, error)
	GenerateDietPlan(ctx context.Context, profile DietProfile) (json.RawMessage, error)
}
