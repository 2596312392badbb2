package repository

import (
	"time"

	"github.com/melodia/melodia-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdatePassword(id uint, hashedPassword string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("password", hashedPassword).Error
}

func (r *UserRepository) UpdateEmail(id uint, email string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("email", email).Error
}

// SetStripeCustomerID records the Stripe customer once; an id already on the
// row is kept.
func (r *UserRepository) SetStripeCustomerID(id uint, customerID string) error {
	return r.db.Model(&models.User{}).
		Where("id = ? AND stripe_customer_id = ''", id).
		Update("stripe_customer_id", customerID).Error
}

// DeductBalance atomically subtracts amount from the balance if and only if
// the balance covers it. The guard condition and the decrement run in a
// single UPDATE, so concurrent deductions for the same user serialize at the
// database. Returns the new balance and whether the deduction applied.
func (r *UserRepository) DeductBalance(id uint, amount int) (int, bool, error) {
	var user models.User
	res := r.db.Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "credit_balance"}}}).
		Where("id = ? AND credit_balance >= ?", id, amount).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance - ?", amount))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := r.GetByID(id)
		if err != nil {
			return 0, false, err
		}
		return current.CreditBalance, false, nil
	}
	return user.CreditBalance, true, nil
}

// AddBalance atomically adds amount to the balance and returns the new value.
func (r *UserRepository) AddBalance(id uint, amount int) (int, error) {
	var user models.User
	res := r.db.Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "credit_balance"}}}).
		Where("id = ?", id).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return user.CreditBalance, nil
}

// RemoveBalanceClamped subtracts amount but never below zero. Used when a
// completed purchase is refunded after some credits were already spent.
func (r *UserRepository) RemoveBalanceClamped(id uint, amount int) (int, error) {
	var user models.User
	res := r.db.Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "credit_balance"}}}).
		Where("id = ?", id).
		UpdateColumn("credit_balance", gorm.Expr("GREATEST(credit_balance - ?, 0)", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return user.CreditBalance, nil
}

// ApplyReset sets the balance to allowance and stamps the reset time, but
// only if the previous reset is at least a full window old. The guard makes
// concurrent reset attempts inside one window collapse to a single effective
// reset.
func (r *UserRepository) ApplyReset(id uint, allowance int, now time.Time, window time.Duration) (bool, error) {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND last_credit_reset <= ?", id, now.Add(-window)).
		Updates(map[string]interface{}{
			"credit_balance":    allowance,
			"last_credit_reset": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
