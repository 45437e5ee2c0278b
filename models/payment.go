package models

import "time"

// Payment statuses as reported by the PIX provider.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentExpired = "expired"
	PaymentFailed  = "failed"
)

// Payment is one PIX charge created for a subscription purchase. ExternalRef
// is the app-generated reference exposed to clients; TxID is the provider's
// transaction id.
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Provider    string     `gorm:"size:32;not null" json:"provider"`
	ExternalRef string     `gorm:"size:64;uniqueIndex;not null" json:"external_ref"`
	TxID        string     `gorm:"size:128;index" json:"txid"`
	AmountCents int        `gorm:"not null" json:"amount_cents"`
	Status      string     `gorm:"size:16;default:'pending'" json:"status"`
	QRCode      string     `gorm:"type:text" json:"qr_code"`
	CopyPaste   string     `gorm:"type:text" json:"copy_paste"`
	PaidAt      *time.Time `json:"paid_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
