package repository

import (
	"github.com/melodia/melodia-backend/internal/models"
	"gorm.io/gorm"
)

type CreditPurchaseRepository struct {
	db *gorm.DB
}

func NewCreditPurchaseRepository(db *gorm.DB) *CreditPurchaseRepository {
	return &CreditPurchaseRepository{
		db: db,
	}
}

func (r *CreditPurchaseRepository) Create(purchase *models.CreditPurchase) error {
	return r.db.Create(purchase).Error
}

func (r *CreditPurchaseRepository) GetBySessionID(sessionID string) (*models.CreditPurchase, error) {
	var purchase models.CreditPurchase
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&purchase).Error
	return &purchase, err
}

// ClaimCompleted transitions a purchase from pending to completed in a single
// guarded UPDATE. Exactly one caller wins per session id; webhook redelivery
// and the client confirm fallback both land here and only the winner credits
// the account.
func (r *CreditPurchaseRepository) ClaimCompleted(sessionID string) (bool, error) {
	res := r.db.Model(&models.CreditPurchase{}).
		Where("stripe_session_id = ? AND status = ?", sessionID, models.PurchaseStatusPending).
		Update("status", models.PurchaseStatusCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseClaim puts a claimed purchase back to pending so a later webhook
// redelivery can retry crediting.
func (r *CreditPurchaseRepository) ReleaseClaim(sessionID string) error {
	return r.db.Model(&models.CreditPurchase{}).
		Where("stripe_session_id = ? AND status = ?", sessionID, models.PurchaseStatusCompleted).
		Update("status", models.PurchaseStatusPending).Error
}

// ClaimRefunded transitions completed to refunded, once.
func (r *CreditPurchaseRepository) ClaimRefunded(sessionID string) (bool, error) {
	res := r.db.Model(&models.CreditPurchase{}).
		Where("stripe_session_id = ? AND status = ?", sessionID, models.PurchaseStatusCompleted).
		Update("status", models.PurchaseStatusRefunded)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CreditPurchaseRepository) MarkFailed(sessionID string) error {
	return r.db.Model(&models.CreditPurchase{}).
		Where("stripe_session_id = ? AND status = ?", sessionID, models.PurchaseStatusPending).
		Update("status", models.PurchaseStatusFailed).Error
}

func (r *CreditPurchaseRepository) GetUserPurchaseHistory(userID uint) ([]models.CreditPurchase, error) {
	var purchases []models.CreditPurchase
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}
