package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixfit/pixfit/config"
	"github.com/pixfit/pixfit/models"
	"github.com/pixfit/pixfit/services"
	"github.com/pixfit/pixfit/utils"
)

// BillingController sells the plus subscription over PIX: create a charge,
// poll it, and take provider webhooks. Payment state is authoritative in the
// payments table; the user's tier flips only when a charge reaches paid.
type BillingController struct {
	db      *gorm.DB
	clock   services.Clock
	gateway services.PaymentGateway
}

func NewBillingController(db *gorm.DB, clock services.Clock, gateway services.PaymentGateway) *BillingController {
	return &BillingController{db: db, clock: clock, gateway: gateway}
}

// CreatePix opens a new PIX charge for the plus plan and returns the QR code
// and copy-paste string for the client to render.
func (b *BillingController) CreatePix(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	cfg := config.Get()
	ref := uuid.NewString()
	charge, err := b.gateway.CreatePixCharge(ctx.Request.Context(), services.CreateChargeRequest{
		AmountCents: cfg.PlusPriceCents,
		Reference:   ref,
		Description: "Plus subscription",
	})
	if err != nil {
		utils.Sugar.Errorw("pix charge creation failed", "user", userID, "err", err)
		utils.Fail(ctx, http.StatusBadGateway, "payment_provider_error")
		return
	}

	payment := models.Payment{
		UserID:      userID,
		Provider:    cfg.PixProvider,
		ExternalRef: ref,
		TxID:        charge.TxID,
		AmountCents: cfg.PlusPriceCents,
		Status:      models.PaymentPending,
		QRCode:      charge.QRCode,
		CopyPaste:   charge.CopyPaste,
	}
	if err := b.db.Create(&payment).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	utils.OK(ctx, gin.H{
		"reference":    payment.ExternalRef,
		"txid":         payment.TxID,
		"qr_code":      payment.QRCode,
		"copy_paste":   payment.CopyPaste,
		"amount_cents": payment.AmountCents,
		"status":       payment.Status,
	})
}

// GetPix polls a charge by reference. A still-pending charge is re-checked
// against the provider, and if it settled the subscription is applied in the
// same transaction as the status flip.
func (b *BillingController) GetPix(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	ref := ctx.Param("ref")
	var payment models.Payment
	err := b.db.Where("external_ref = ? AND user_id = ?", ref, userID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	if payment.Status == models.PaymentPending && payment.TxID != "" {
		charge, err := b.gateway.GetCharge(ctx.Request.Context(), payment.TxID)
		if err != nil {
			utils.Sugar.Warnw("pix status poll failed", "txid", payment.TxID, "err", err)
		} else if charge.Status != payment.Status {
			if err := b.settle(&payment, charge.Status); err != nil {
				utils.FailDB(ctx, err)
				return
			}
		}
	}

	utils.OK(ctx, gin.H{
		"reference":    payment.ExternalRef,
		"status":       payment.Status,
		"amount_cents": payment.AmountCents,
		"paid_at":      payment.PaidAt,
	})
}

// Webhook is the provider's server-to-server notification. It is not behind
// auth; the shared secret header is the only gate.
func (b *BillingController) Webhook(ctx *gin.Context) {
	cfg := config.Get()
	if cfg.PixWebhookSecret == "" || ctx.GetHeader("X-Webhook-Secret") != cfg.PixWebhookSecret {
		utils.Fail(ctx, http.StatusForbidden, utils.CodeForbidden)
		return
	}

	type notification struct {
		TxID   string `json:"txid"`
		Status string `json:"status"`
	}
	var note notification
	if err := ctx.ShouldBindJSON(&note); err != nil || note.TxID == "" {
		utils.Fail(ctx, http.StatusBadRequest, utils.CodeInvalidBody)
		return
	}

	var payment models.Payment
	err := b.db.Where("tx_id = ?", note.TxID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, utils.CodeNotFound)
			return
		}
		utils.FailDB(ctx, err)
		return
	}

	if payment.Status == models.PaymentPending {
		if err := b.settle(&payment, note.Status); err != nil {
			utils.FailDB(ctx, err)
			return
		}
	}
	utils.OK(ctx, gin.H{"status": payment.Status})
}

// Subscription reports the caller's current entitlement.
func (b *BillingController) Subscription(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Fail(ctx, http.StatusUnauthorized, utils.CodeUnauthorized)
		return
	}

	var user models.User
	if err := b.db.First(&user, userID).Error; err != nil {
		utils.FailDB(ctx, err)
		return
	}

	utils.OK(ctx, gin.H{
		"tier":            user.EffectiveTier(b.clock.Now()),
		"plus_expires_at": user.PlusExpiresAt,
	})
}

// settle moves a pending payment to a terminal provider status. Reaching
// paid also grants the subscription window, atomically with the flip.
func (b *BillingController) settle(payment *models.Payment, status string) error {
	switch status {
	case models.PaymentPaid:
		return b.db.Transaction(func(tx *gorm.DB) error {
			now := b.clock.Now()
			res := tx.Model(&models.Payment{}).
				Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
				Updates(map[string]any{"status": models.PaymentPaid, "paid_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Another poller or the webhook settled it first.
				return tx.First(payment, payment.ID).Error
			}

			var user models.User
			if err := tx.First(&user, payment.UserID).Error; err != nil {
				return err
			}
			expiry := extendPlus(user.PlusExpiresAt, now, config.Get().PlusDurationDays)
			if err := tx.Model(&user).
				Updates(map[string]any{"tier": models.TierPlus, "plus_expires_at": expiry}).Error; err != nil {
				return err
			}

			payment.Status = models.PaymentPaid
			payment.PaidAt = &now
			return nil
		})
	case models.PaymentExpired, models.PaymentFailed:
		err := b.db.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Update("status", status).Error
		if err == nil {
			payment.Status = status
		}
		return err
	default:
		return nil
	}
}

// extendPlus stacks a purchase on top of any remaining subscription time.
func extendPlus(current *time.Time, now time.Time, days int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, 0, days)
}
