package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/services"
	"github.com/pixfit/pixfit/utils"
)

// AdminController is the back-office: user listing and lookup, manual tier
// overrides, and revenue reporting. Routes sit behind AdminRequired.
type AdminController struct {
	db    *gorm.DB
	clock services.Clock
}

func NewAdminController(db *gorm.DB, clock services.Clock) *AdminController {
	return &AdminController{db: db, clock: clock}
}

// ListUsers pages through users, optionally filtered by an email/name
// substring.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	search := strings.TrimSpace(ctx.Query("q"))

	query := a.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"users": users, "total": total, "page": page})
}

// GetUser returns one user with activity and payment counters.
func (a *AdminController) GetUser(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidID)
		return
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	var sessions, scans, paid int64
	if err := a.db.Model(&models.WorkoutSession{}).Where("user_id = ?", id).Count(&sessions).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	if err := a.db.Model(&models.ScanLog{}).Where("user_id = ?", id).Count(&scans).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	if err := a.db.Model(&models.Payment{}).
		Where("user_id = ? AND status = ?", id, models.PaymentPaid).
		Count(&paid).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	utils.OK(ctx, gin.H{
		"user": user,
		"activity": gin.H{
			"workout_sessions": sessions,
			"scans":            scans,
			"paid_payments":    paid,
		},
	})
}

// UpdateUser applies a manual tier override, e.g. comping a subscription or
// revoking one after a refund handled off-platform.
func (a *AdminController) UpdateUser(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidID)
		return
	}

	type request struct {
		Tier          *string    `json:"tier"`
		PlusExpiresAt *time.Time `json:"plus_expires_at"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	updates := map[string]any{}
	if req.Tier != nil {
		switch *req.Tier {
		case models.TierFree:
			updates["tier"] = models.TierFree
			updates["plus_expires_at"] = nil
		case models.TierPlus:
			updates["tier"] = models.TierPlus
		default:
			utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
			return
		}
	}
	if req.PlusExpiresAt != nil {
		updates["plus_expires_at"] = *req.PlusExpiresAt
	}
	if len(updates) == 0 {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	if err := a.db.Model(&user).Updates(updates).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	if err := a.db.First(&user, id).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}
	utils.OK(ctx, gin.H{"user": user})
}

// FinanceSummary reports totals plus a per-day paid-revenue series over the
// trailing 30 days. Days without revenue still appear, zero-filled.
func (a *AdminController) FinanceSummary(ctx *gin.Context) {
	var totalPaid struct {
		Count int64
		Cents int64
	}
	err := a.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentPaid).
		Select("COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS cents").
		Scan(&totalPaid).Error
	if err != nil {
		utils.FailDB(ctx, err)
		return
	}

	var pending int64
	if err := a.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentPending).
		Count(&pending).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	var plusUsers int64
	if err := a.db.Model(&models.User{}).
		Where("tier = ?", models.TierPlus).
		Count(&plusUsers).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	today := services.DayOf(a.clock.Now())
	start := today.AddDate(0, 0, -29)

	var paid []models.Payment
	if err := a.db.Where("status = ? AND paid_at >= ?", models.PaymentPaid, start).
		Find(&paid).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	type dayRevenue struct {
		Date  string `json:"date"`
		Cents int64  `json:"cents"`
		Count int    `json:"count"`
	}
	byDay := make(map[string]*dayRevenue)
	days := make([]*dayRevenue, 0, 30)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		entry := &dayRevenue{Date: services.DayKey(d)}
		byDay[entry.Date] = entry
		days = append(days, entry)
	}
	for _, p := range paid {
		if p.PaidAt == nil {
			continue
		}
		if entry, ok := byDay[services.DayKey(services.DayOf(*p.PaidAt))]; ok {
			entry.Cents += int64(p.AmountCents)
			entry.Count++
		}
	}

	utils.OK(ctx, gin.H{
		"total_paid_count": totalPaid.Count,
		"total_paid_cents": totalPaid.Cents,
		"pending_count":    pending,
		"plus_users":       plusUsers,
		"daily":            days,
	})
}
