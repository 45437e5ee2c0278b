package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/services"
	"github.com/pixfit/pixfit/utils"
)

// WorkoutController manages the workout plan, daily sessions, set logging,
// and the derived stats endpoints (summaries, streak, PRs).
type WorkoutController struct {
	db         *gorm.DB
	clock      services.Clock
	aggregator *services.Aggregator
	streaks    *services.StreakCalculator
	prs        *services.PRCalculator
}

func NewWorkoutController(db *gorm.DB, clock services.Clock) *WorkoutController {
	return &WorkoutController{
		db:         db,
		clock:      clock,
		aggregator: services.NewAggregator(db, clock),
		streaks:    services.NewStreakCalculator(db, clock),
		prs:        services.NewPRCalculator(db),
	}
}

// AddPlanItem adds an exercise+variation to the user's persistent plan.
// Catalog titles are denormalized at insert time.
func (w *WorkoutController) AddPlanItem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	type request struct {
		GroupID        string `json:"group_id"`
		ExerciseID     string `json:"exercise_id" binding:"required"`
		VariationID    string `json:"variation_id" binding:"required"`
		ExerciseTitle  string `json:"exercise_title"`
		VariationTitle string `json:"variation_title"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	item := models.WorkoutItem{
		UserID:         userID,
		GroupID:        strings.TrimSpace(req.GroupID),
		ExerciseID:     strings.TrimSpace(req.ExerciseID),
		VariationID:    strings.TrimSpace(req.VariationID),
		ExerciseTitle:  utils.Sanitize(strings.TrimSpace(req.ExerciseTitle)),
		VariationTitle: utils.Sanitize(strings.TrimSpace(req.VariationTitle)),
	}
	if item.ExerciseID == "" || item.VariationID == "" {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	if err := w.db.Create(&item).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	utils.OK(ctx, gin.H{"item": item})
}

// ListPlanItems returns the user's plan items.
func (w *WorkoutController) ListPlanItems(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var items []models.WorkoutItem
	if err := w.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"items": items})
}

// DeletePlanItem removes one plan item. Row-level only: historical session
// items referencing it stay intact thanks to denormalized titles.
func (w *WorkoutController) DeletePlanItem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}
	itemID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidID)
		return
	}

	res := w.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.WorkoutItem{})
	if res.Error != nil {
		utils.FailDB(ctx, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
		return
	}
	utils.OK(ctx, gin.H{})
}

// StartToday lazily creates today's session. Re-marking today returns the
// existing row rather than duplicating it.
func (w *WorkoutController) StartToday(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	session, err := w.todaySession(userID)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}
	w.invalidateStats(userID)
	utils.OK(ctx, gin.H{"session": session})
}

// AttachItem places a plan item into today's session, creating the session
// on first use.
func (w *WorkoutController) AttachItem(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	type request struct {
		WorkoutItemID uint `json:"workout_item_id" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	var planItem models.WorkoutItem
	if err := w.db.Where("id = ? AND user_id = ?", req.WorkoutItemID, userID).First(&planItem).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	session, err := w.todaySession(userID)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}

	item := models.SessionItem{
		SessionID:      session.ID,
		WorkoutItemID:  planItem.ID,
		ExerciseID:     planItem.ExerciseID,
		VariationID:    planItem.VariationID,
		ExerciseTitle:  planItem.ExerciseTitle,
		VariationTitle: planItem.VariationTitle,
	}
	if err := w.db.Create(&item).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	w.invalidateStats(userID)
	utils.OK(ctx, gin.H{"item": item})
}

// ListTodayItems returns today's session items (newest first) with their sets
// ordered by set index.
func (w *WorkoutController) ListTodayItems(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	today := services.DayOf(w.clock.Now())
	var session models.WorkoutSession
	if err := w.db.Where("user_id = ? AND performed_on = ?", userID, today).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.OK(ctx, gin.H{"items": []models.SessionItem{}})
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	var items []models.SessionItem
	if err := w.db.
		Preload("Sets", func(db *gorm.DB) *gorm.DB { return db.Order("set_index ASC") }).
		Where("session_id = ?", session.ID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"items": items})
}

// AddSet appends a set to a session item. The set index is assigned as
// max+1 inside a transaction that locks the parent item row, so sequential
// and concurrent adds both observe strictly increasing indexes.
func (w *WorkoutController) AddSet(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}
	itemID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidID)
		return
	}

	type request struct {
		Reps     int      `json:"reps"`
		WeightKG *float64 `json:"weight_kg"`
		RPE      *float64 `json:"rpe"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}
	if req.Reps <= 0 || req.WeightKG == nil || *req.WeightKG < 0 {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}
	if req.RPE != nil && (*req.RPE < 1 || *req.RPE > 10) {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	var set models.Set
	err := w.db.Transaction(func(tx *gorm.DB) error {
		var item models.SessionItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, itemID).Error; err != nil {
			return err
		}

		var session models.WorkoutSession
		if err := tx.First(&session, item.SessionID).Error; err != nil {
			return err
		}
		if session.UserID != userID {
			return gorm.ErrRecordNotFound
		}

		var maxIndex int
		if err := tx.Model(&models.Set{}).
			Where("session_item_id = ?", item.ID).
			Select("COALESCE(MAX(set_index), 0)").
			Scan(&maxIndex).Error; err != nil {
			return err
		}

		set = models.Set{
			SessionItemID: item.ID,
			SetIndex:      maxIndex + 1,
			Reps:          req.Reps,
			WeightKG:      *req.WeightKG,
			RPE:           req.RPE,
		}
		return tx.Create(&set).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	w.invalidateStats(userID)
	utils.OK(ctx, gin.H{"set": set})
}

// DeleteSet removes one set. Indexes are never renumbered; a later add
// continues from the prior maximum.
func (w *WorkoutController) DeleteSet(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}
	setID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidID)
		return
	}

	var set models.Set
	if err := w.db.First(&set, setID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	owned, err := w.ownsSessionItem(userID, set.SessionItemID)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}
	if !owned {
		utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
		return
	}

	if err := w.db.Delete(&models.Set{}, set.ID).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	w.invalidateStats(userID)
	utils.OK(ctx, gin.H{})
}

// TodaySummary returns the lightweight "today" widget stats.
func (w *WorkoutController) TodaySummary(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	stats, hasWorkout, err := w.aggregator.TodaySummary(ctx.Request.Context(), userID)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"hasWorkout": hasWorkout, "stats": stats})
}

// RangedSummary returns per-day aggregates for the trailing week or month,
// always fully zero-filled across the range.
func (w *WorkoutController) RangedSummary(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	rangeName := ctx.DefaultQuery("range", "week")
	today := services.DayOf(w.clock.Now())
	var start time.Time
	switch rangeName {
	case "week":
		start = today.AddDate(0, 0, -6)
	case "month":
		start = today.AddDate(0, 0, -29)
	default:
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	cacheKey := fmt.Sprintf("cache:user:%d:summary:%s:%s", userID, rangeName, services.DayKey(today))
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	days, err := w.aggregator.DailySummaries(ctx.Request.Context(), userID, start, today)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}

	payload := gin.H{
		"start": services.DayKey(start),
		"today": services.DayKey(today),
		"days":  days,
	}
	utils.OKCached(ctx, payload, cacheKey)
}

// Streak returns the consecutive-day streak and the trailing 7-day trail.
func (w *WorkoutController) Streak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	result, err := w.streaks.Current(ctx.Request.Context(), userID)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{
		"streak":          result.Streak,
		"last7":           result.Last7,
		"hasWorkoutToday": result.HasWorkoutToday,
	})
}

// PRs returns the top personal records ranked by estimated one-rep max.
func (w *WorkoutController) PRs(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	cacheKey := fmt.Sprintf("cache:user:%d:prs", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	records, err := w.prs.TopRecords(ctx.Request.Context(), userID)
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OKCached(ctx, gin.H{"prs": records}, cacheKey)
}

// todaySession finds or lazily creates today's session for the user.
func (w *WorkoutController) todaySession(userID uint) (*models.WorkoutSession, error) {
	today := services.DayOf(w.clock.Now())
	session := models.WorkoutSession{UserID: userID, PerformedOn: today}
	err := w.db.Where("user_id = ? AND performed_on = ?", userID, today).
		FirstOrCreate(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (w *WorkoutController) ownsSessionItem(userID, itemID uint) (bool, error) {
	var item models.SessionItem
	if err := w.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	var session models.WorkoutSession
	if err := w.db.First(&session, item.SessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return session.UserID == userID, nil
}

func (w *WorkoutController) invalidateStats(userID uint) {
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(userID)) + ":")
}
