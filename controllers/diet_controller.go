package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/config"
	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/services"
	"github.com/pixfit/pixfit/utils"
)

// DietController generates and serves AI diet plans.
type DietController struct {
	db       *gorm.DB
	clock    services.Clock
	analyzer services.Analyzer
}

func NewDietController(db *gorm.DB, clock services.Clock, analyzer services.Analyzer) *DietController {
	return &DietController{db: db, clock: clock, analyzer: analyzer}
}

// Generate builds a diet plan from the user's stored biometrics. Users with
// incomplete onboarding get a 400 naming what is missing.
func (d *DietController) Generate(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var user models.User
	if err := d.db.First(&user, userID).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	profile, err := profileFrom(&user, d.clock.Now())
	if err != nil {
		utils.Fail(ctx, http.StatusBadRequest, "profile_incomplete")
		return
	}

	planJSON, err := d.analyzer.GenerateDietPlan(ctx.Request.Context(), *profile)
	if err != nil {
		utils.Sugar.Errorw("diet plan generation failed", "user", userID, "err", err)
		utils.Fail(ctx, http.StatusBadGateway, "generation_failed")
		return
	}

	plan := models.DietPlan{
		UserID: userID,
		Plan:   datatypes.JSON(planJSON),
		Model:  config.Get().AIModel,
	}
	if err := d.db.Create(&plan).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"plan": plan})
}

// GetPlan returns the most recent plan, or not_found if none was generated.
func (d *DietController) GetPlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var plan models.DietPlan
	err := d.db.Where("user_id = ?", userID).Order("created_at DESC").First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"plan": plan})
}

var errProfileIncomplete = errors.New("profile incomplete")

func profileFrom(user *models.User, now time.Time) (*services.DietProfile, error) {
	if user.Sex == "" || user.BirthDate == nil || user.HeightCM <= 0 || user.WeightKG <= 0 {
		return nil, errProfileIncomplete
	}
	age := now.Year() - user.BirthDate.Year()
	if now.YearDay() < user.BirthDate.YearDay() {
		age--
	}
	return &services.DietProfile{
		Sex:           user.Sex,
		Age:           age,
		HeightCM:      user.HeightCM,
		WeightKG:      user.WeightKG,
		ActivityLevel: user.ActivityLevel,
		Goal:          user.Goal,
	}, nil
}
