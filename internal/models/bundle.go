package models

import "time"

// CreditBundle is a purchasable credit SKU. Total credits granted on a
// completed purchase = Credits + BonusCredits.
type CreditBundle struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Slug         string    `json:"slug" gorm:"unique;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	Credits      int       `json:"credits" gorm:"not null"`
	BonusCredits int       `json:"bonus_credits" gorm:"not null;default:0"`
	Price        float64   `json:"price" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (b *CreditBundle) TotalCredits() int {
	return b.Credits + b.BonusCredits
}

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
	PurchaseStatusRefunded  = "refunded"
)

// CreditPurchase records one checkout attempt. The unique StripeSessionID is
// the idempotency key for payment reconciliation: webhook redelivery and the
// client confirm fallback both converge on the same row.
type CreditPurchase struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	BundleID        uint      `json:"bundle_id" gorm:"not null"`
	Credits         int       `json:"credits" gorm:"not null"`
	BonusCredits    int       `json:"bonus_credits" gorm:"not null"`
	Price           float64   `json:"price" gorm:"not null"`
	StripeSessionID string    `json:"stripe_session_id" gorm:"unique;not null"`
	Status          string    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *CreditPurchase) TotalCredits() int {
	return p.Credits + p.BonusCredits
}
