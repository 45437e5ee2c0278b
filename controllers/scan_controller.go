package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/services"
	"github.com/pixfit/pixfit/utils"
)

const maxScanImageBytes = 8 << 20

// ScanController handles meal-photo analysis, scan history, and the
// weekly quota read-out.
type ScanController struct {
	db       *gorm.DB
	clock    services.Clock
	gate     *services.ScanGate
	analyzer services.Analyzer
}

func NewScanController(db *gorm.DB, clock services.Clock, gate *services.ScanGate, analyzer services.Analyzer) *ScanController {
	return &ScanController{db: db, clock: clock, gate: gate, analyzer: analyzer}
}

// Analyze runs one meal photo through the vision model and persists the
// result. Free-tier users are checked against the weekly quota first; the
// quota row is never written here, usage is re-counted from scan history.
func (s *ScanController) Analyze(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	usage, err := s.gate.Check(ctx.Request.Context(), &user)
	if err != nil {
		if errors.Is(err, services.ErrScanLimitReached) {
			utils.LimitReached(ctx, usage)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	type request struct {
		Image    string `json:"image" binding:"required"`
		MimeType string `json:"mime_type"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 || len(image) > maxScanImageBytes {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}
	mime := strings.TrimSpace(req.MimeType)
	if mime == "" {
		mime = "image/jpeg"
	}

	analysis, err := s.analyzer.AnalyzeMeal(ctx.Request.Context(), image, mime)
	if err != nil {
		utils.Sugar.Errorw("meal analysis failed", "user", userID, "err", err)
		utils.Fail(ctx, http.StatusBadGateway, "analysis_failed")
		return
	}

	macroJSON, err := json.Marshal(analysis)
	if err != nil {
		utils.Fail(ctx, http.StatusBadGateway, "analysis_failed")
		return
	}

	entry := models.ScanLog{UserID: userID, MacroData: datatypes.JSON(macroJSON), CreatedAt: s.clock.Now()}
	if err := s.db.Create(&entry).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	s.invalidateStats(userID)
	utils.OK(ctx, gin.H{"scan_id": entry.ID, "analysis": analysis})
}

// History returns the user's scans, newest first.
func (s *ScanController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	page, pageSize := parsePagination(ctx)
	var total int64
	if err := s.db.Model(&models.ScanLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	var scans []models.ScanLog
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&scans).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"scans": scans, "total": total, "page": page})
}

// Quota reports the current week's usage without consuming anything.
func (s *ScanController) Quota(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	usage, err := s.gate.Check(ctx.Request.Context(), &user)
	if err != nil && !errors.Is(err, services.ErrScanLimitReached) {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{
		"tier":  user.EffectiveTier(s.clock.Now()),
		"usage": usage,
	})
}

func (s *ScanController) invalidateStats(userID uint) {
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:%d:", userID))
}
